package content

import (
	"context"
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testSite = `
profile:
  name: Elie
  title: Creative Developer
  about: "I build **fast** things."
projects:
  - id: ids
    title: Intrusion Detection
    description: Neural network flagging hostile traffic.
    categories: [cyber, data]
    image: /static/images/ids.png
    images: [/static/images/ids-graph.png, "", /static/images/ids.png, /static/images/ids-alerts.png]
    technologies: [Python, TensorFlow, Suricata]
    features: [Real-time scoring, Alert rules]
    challenges: "Training data was **imbalanced**."
  - id: pipeline
    title: ETL Pipeline
    description: Spark jobs feeding the warehouse.
    categories: [data]
    featured: true
  - id: recovery
    title: Disk Rescue
    description: Recovering data from failing drives.
    categories: [elec]
skills:
  - {name: Python, level: 90, category: dev}
  - {name: SQL, level: 85, category: data}
  - {name: Go, level: 80, category: dev}
`

func parseTestSite(t *testing.T) *Site {
	t.Helper()
	s, err := Parse([]byte(testSite))
	require.NoError(t, err)
	return s
}

func projectIDs(ps []Project) []string {
	ids := []string{}
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestFilterProjects(t *testing.T) {
	s := parseTestSite(t)

	tests := []struct {
		filter, query string
		want          []string
	}{
		{"", "", []string{"ids", "pipeline", "recovery"}},
		{"all", "", []string{"ids", "pipeline", "recovery"}},
		{"data", "", []string{"ids", "pipeline"}},
		{"elec", "", []string{"recovery"}},
		{"web", "", []string{}},
		{"all", "SPARK", []string{"pipeline"}},
		{"all", "  disk ", []string{"recovery"}},
		{"data", "neural", []string{"ids"}},
		{"elec", "neural", []string{}},
	}
	for _, tt := range tests {
		got := projectIDs(s.FilterProjects(tt.filter, tt.query))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("FilterProjects(%q, %q) mismatch (-want +got):\n%s", tt.filter, tt.query, diff)
		}
	}
}

func TestSiteLookups(t *testing.T) {
	s := parseTestSite(t)

	p, ok := s.Project("pipeline")
	require.True(t, ok)
	assert.Equal(t, "ETL Pipeline", p.Title)
	_, ok = s.Project("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"pipeline"}, projectIDs(s.Featured()))
	assert.Equal(t, []string{"cyber", "data", "elec"}, s.Categories())

	groups := s.SkillGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "dev", groups[0].Category)
	assert.Len(t, groups[0].Skills, 2)
	assert.Equal(t, "data", groups[1].Category)
}

func TestProjectDetails(t *testing.T) {
	s := parseTestSite(t)

	p, ok := s.Project("ids")
	require.True(t, ok)
	assert.Equal(t, []string{"Python", "TensorFlow", "Suricata"}, p.Technologies)
	assert.Equal(t, []string{"Real-time scoring", "Alert rules"}, p.Features)
	assert.Contains(t, p.Challenges, "**imbalanced**")

	want := []string{"/static/images/ids.png", "/static/images/ids-graph.png", "/static/images/ids-alerts.png"}
	if diff := cmp.Diff(want, p.Gallery()); diff != "" {
		t.Errorf("Gallery() mismatch (-want +got):\n%s", diff)
	}

	p, _ = s.Project("pipeline")
	assert.Empty(t, p.Gallery())
}

func TestParseRejectsInvalid(t *testing.T) {
	const profile = "profile: {name: x}\n"
	tests := map[string]string{
		"empty":        "",
		"missing id":   profile + "projects:\n  - title: x\n",
		"duplicate id": profile + "projects:\n  - id: a\n  - id: a\n",
		"reserved id":  profile + "projects:\n  - id: all\n",
		"slash in id":  profile + "projects:\n  - id: a/b\n",
		"skill level":  profile + "skills:\n  - {name: x, level: 120}\n",
		"blank tech":   profile + "projects:\n  - id: a\n    technologies: [Go, \" \"]\n",
		"yaml":         "projects: [\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestRendererSanitizes(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("Hello **world** <script>alert(1)</script> [link](https://example.com)")
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<strong>world</strong>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `href="https://example.com"`)
	assert.Contains(t, html, `target="_blank"`)

	md := r.FuncMap()["markdown"].(func(string) template.HTML)
	assert.True(t, strings.HasPrefix(string(md("# Title")), "<h1"))
}

func TestHolder(t *testing.T) {
	a, b := &Site{}, &Site{}
	h := NewHolder(a)
	assert.Same(t, a, h.Get())
	assert.Equal(t, uint64(1), h.Version())

	h.Set(b)
	assert.Same(t, b, h.Get())
	assert.Equal(t, uint64(2), h.Version())
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSite), 0644))
	site, err := Load(path)
	require.NoError(t, err)

	h := NewHolder(site)
	reloaded := make(chan *Site, 4)
	w := NewWatcher(path, h, nil, func(s *Site) { reloaded <- s })
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// A broken file keeps the current site; give the watcher time to register first.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("projects: [\n"), 0644))
	time.Sleep(150 * time.Millisecond)
	assert.Same(t, site, h.Get())

	updated := strings.Replace(testSite, "name: Elie", "name: Elie M.", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	select {
	case s := <-reloaded:
		assert.Equal(t, "Elie M.", s.Profile.Name)
		assert.Same(t, s, h.Get())
	case <-time.After(3 * time.Second):
		t.Fatal("content was not reloaded")
	}

	cancel()
	require.True(t, errors.Is(<-done, context.Canceled))
}
