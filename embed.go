// embed.go - templates and static assets baked into the binary
package main

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/meliem/meliem.github.io/internal/content"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed all:static
var staticFS embed.FS

// staticFiles is the static directory with the prefix stripped.
func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// loadTemplates parses every page and fragment with the site helpers.
func loadTemplates(r *content.Renderer) (*template.Template, error) {
	funcs := template.FuncMap{
		"ago":   func(t time.Time) string { return humanize.Time(t) },
		"bytes": func(n int) string { return humanize.Bytes(uint64(max(n, 0))) },
		"comma": func(n int64) string { return humanize.Comma(n) },
		"join":  strings.Join,
		"lower": strings.ToLower,
		"year":  func() int { return time.Now().Year() },
	}
	for name, fn := range r.FuncMap() {
		funcs[name] = fn
	}
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}
