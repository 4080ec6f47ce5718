// Package content loads the portfolio's editable copy: profile, experience,
// projects and skills.
package content

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilterAll selects every project.
const FilterAll = "all"

// Site is everything the pages render.
type Site struct {
	Profile   Profile   `yaml:"profile"`
	Work      []Entry   `yaml:"work"`
	Education []Entry   `yaml:"education"`
	Projects  []Project `yaml:"projects"`
	Skills    []Skill   `yaml:"skills"`
	Privacy   string    `yaml:"privacy"` // markdown
}

// Profile is the owner's introduction.
type Profile struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	Tagline  string `yaml:"tagline"`
	About    string `yaml:"about"` // markdown
	Email    string `yaml:"email"`
	Location string `yaml:"location"`
	Links    []Link `yaml:"links"`
}

// Link is a labelled URL.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Entry is a job or a degree on the experience timeline.
type Entry struct {
	Title        string   `yaml:"title"`
	Organization string   `yaml:"organization"`
	Start        string   `yaml:"start"`
	End          string   `yaml:"end"`
	Logo         string   `yaml:"logo"`
	Highlights   []string `yaml:"highlights"`
}

// Project is a portfolio card and its detail page.
type Project struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Body        string   `yaml:"body"` // markdown
	Image       string   `yaml:"image"` // cover, first in the gallery
	Images      []string `yaml:"images"`
	Categories  []string `yaml:"categories"`
	Tags        []string `yaml:"tags"`
	Links       []Link   `yaml:"links"`
	Featured    bool     `yaml:"featured"`

	Technologies []string `yaml:"technologies"`
	Features     []string `yaml:"features"`
	Challenges   string   `yaml:"challenges"` // markdown
}

// Gallery lists the cover image followed by the other images, without
// blanks or repeats.
func (p Project) Gallery() []string {
	var out []string
	for _, img := range append([]string{p.Image}, p.Images...) {
		img = strings.TrimSpace(img)
		if img == "" || slices.Contains(out, img) {
			continue
		}
		out = append(out, img)
	}
	return out
}

// Skill is one entry of the skills page.
type Skill struct {
	Name        string   `yaml:"name"`
	Level       int      `yaml:"level"` // percent
	Color       string   `yaml:"color"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Tools       []string `yaml:"tools"`
}

// SkillGroup is the skills of one category.
type SkillGroup struct {
	Category string
	Skills   []Skill
}

// Load reads a site from a YAML file.
func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates site YAML.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the profile name, project IDs and skill levels.
func (s *Site) Validate() error {
	if strings.TrimSpace(s.Profile.Name) == "" {
		return fmt.Errorf("profile.name is required")
	}
	seen := make(map[string]bool, len(s.Projects))
	for i, p := range s.Projects {
		if p.ID == "" {
			return fmt.Errorf("project %d has no id", i)
		}
		if p.ID == FilterAll || strings.ContainsAny(p.ID, "/?# ") {
			return fmt.Errorf("project id %q is not usable in a URL", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate project id %q", p.ID)
		}
		seen[p.ID] = true
		for _, tech := range p.Technologies {
			if strings.TrimSpace(tech) == "" {
				return fmt.Errorf("project %q has an empty technology", p.ID)
			}
		}
	}
	for _, sk := range s.Skills {
		if sk.Level < 0 || sk.Level > 100 {
			return fmt.Errorf("skill %q level must be 0-100, got %d", sk.Name, sk.Level)
		}
	}
	return nil
}

// FilterProjects returns the projects in category filter ("all" or empty
// for every category) whose title or description contains query, ignoring
// case.
func (s *Site) FilterProjects(filter, query string) []Project {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Project
	for _, p := range s.Projects {
		if filter != "" && filter != FilterAll && !slices.Contains(p.Categories, filter) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Project looks up a project by ID.
func (s *Site) Project(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// Featured returns the projects flagged for the homepage, or the first three
// when none are.
func (s *Site) Featured() []Project {
	var out []Project
	for _, p := range s.Projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = s.Projects[:min(3, len(s.Projects))]
	}
	return out
}

// Categories lists project categories in order of first appearance.
func (s *Site) Categories() []string {
	var out []string
	for _, p := range s.Projects {
		for _, c := range p.Categories {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// SkillGroups groups skills by category in order of first appearance.
func (s *Site) SkillGroups() []SkillGroup {
	var groups []SkillGroup
	index := map[string]int{}
	for _, sk := range s.Skills {
		i, ok := index[sk.Category]
		if !ok {
			i = len(groups)
			index[sk.Category] = i
			groups = append(groups, SkillGroup{Category: sk.Category})
		}
		groups[i].Skills = append(groups[i].Skills, sk)
	}
	return groups
}
