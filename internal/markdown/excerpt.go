package markdown

import (
	"regexp"
	"strings"
)

// DefaultExcerptLength is the excerpt window, counted in characters of
// rendered HTML.
const DefaultExcerptLength = 300

// excerptEllipsis marks a truncated excerpt.
const excerptEllipsis = "..."

var (
	// Complete heading elements, tags and contents both.
	headingRe = regexp.MustCompile(`(?is)<h[1-6][^>]*>.*?</h[1-6]\s*>`)
	// A heading the cut left unterminated; runs to the end of the window.
	// The cut can keep as little as the bare "<h" of the open tag.
	danglingHeadingRe = regexp.MustCompile(`(?is)<h([1-6].*)?$`)
)

// Excerpt derives the list-view preview from rendered HTML: the first
// limit characters, cut back to the last space when truncation lands
// mid-word (the raw cut stands when the window holds no space), with
// heading elements stripped from the window so titles never repeat
// inside previews. A truncated excerpt ends in "...".
func Excerpt(html string, limit int) string {
	if limit <= 0 {
		limit = DefaultExcerptLength
	}

	runes := []rune(html)
	truncated := len(runes) > limit

	s := html
	if truncated {
		cut := string(runes[:limit])
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
		s = cut
	}

	s = headingRe.ReplaceAllString(s, "")
	s = danglingHeadingRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if truncated {
		s += excerptEllipsis
	}
	return s
}
