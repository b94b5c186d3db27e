package models

import (
	"html/template"
	"time"
)

// Post represents a single blog post backed by a Markdown file.
type Post struct {
	// Name is the source filename without the .md extension; it doubles
	// as the URL slug for the single-post route.
	Name string

	// Title comes from the front matter "title" key, falling back to a
	// humanized Name when the file carries no front matter.
	Title string

	// HTML is the rendered body. template.HTML so templates inject it
	// without escaping.
	HTML template.HTML

	// Excerpt is the truncated, heading-free preview used on list pages.
	Excerpt template.HTML

	// Meta holds the front matter as key -> list-of-values.
	Meta map[string][]string

	// Raw is the Markdown body as read from disk, front matter stripped.
	Raw []byte

	// ModTime is the source file's modification time at render time.
	ModTime time.Time
}

// MetaValue returns the first value for a front matter key, or "" when
// the key is absent.
func (p *Post) MetaValue(key string) string {
	if p == nil {
		return ""
	}
	if vals := p.Meta[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
