package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Result is the output of rendering one Markdown document.
type Result struct {
	// HTML is the rendered body.
	HTML []byte
	// Meta is the front matter, normalized to key -> list-of-values.
	// Empty when the document has no front matter block.
	Meta map[string][]string
	// Body is the Markdown source with the front matter stripped.
	Body []byte
}

// Renderer converts Markdown with optional front matter into HTML plus
// metadata. The underlying goldmark engine is stateless, so a single
// Renderer is safe to share across request goroutines without locking.
type Renderer struct {
	engine goldmark.Markdown
}

// New builds a Renderer with the blog's fixed feature set: fenced code
// blocks (CommonMark core), newline-to-<br> hard wraps, and raw HTML
// passed through untouched. Content is the author's own, so no
// sanitizing pass runs.
func New() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
	}
}

// Render extracts front matter from src, renders the remaining body to
// HTML, and normalizes the metadata. Pure function of its input.
func (r *Renderer) Render(src []byte) (*Result, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	var buf bytes.Buffer
	if err := r.engine.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	return &Result{
		HTML: buf.Bytes(),
		Meta: normalizeMeta(meta),
		Body: body,
	}, nil
}

// normalizeMeta flattens decoded front matter into the key -> values
// shape posts expose: scalars become one-element lists, YAML sequences
// keep their order with each element stringified.
func normalizeMeta(meta map[string]any) map[string][]string {
	out := make(map[string][]string, len(meta))
	for key, value := range meta {
		switch v := value.(type) {
		case nil:
			out[key] = []string{}
		case string:
			out[key] = []string{v}
		case []any:
			vals := make([]string, 0, len(v))
			for _, item := range v {
				vals = append(vals, fmt.Sprint(item))
			}
			out[key] = vals
		default:
			out[key] = []string{fmt.Sprint(v)}
		}
	}
	return out
}
