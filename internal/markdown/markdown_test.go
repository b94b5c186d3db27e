package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_FencedCodeBlock(t *testing.T) {
	r := New()
	src := "Some text\n\n```go\nfmt.Println(\"hi\")\n```\n"

	res, err := r.Render([]byte(src))
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), "<pre><code")
	require.Contains(t, string(res.HTML), "fmt.Println")
}

func TestRender_HardWrapsBecomeBreaks(t *testing.T) {
	r := New()
	res, err := r.Render([]byte("first line\nsecond line\n"))
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), "<br>")
}

func TestRender_RawHTMLPassesThrough(t *testing.T) {
	r := New()
	res, err := r.Render([]byte("before\n\n<div class=\"note\">kept</div>\n"))
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), `<div class="note">kept</div>`)
}

func TestRender_FrontMatterExtracted(t *testing.T) {
	r := New()
	src := "---\ntitle: Hello\ntags: [go, blog]\nyear: 2025\n---\n# Heading\n\nBody text.\n"

	res, err := r.Render([]byte(src))
	require.NoError(t, err)
	require.Equal(t, []string{"Hello"}, res.Meta["title"])
	require.Equal(t, []string{"go", "blog"}, res.Meta["tags"])
	require.Equal(t, []string{"2025"}, res.Meta["year"])

	// The front matter block never leaks into the rendered body.
	require.NotContains(t, string(res.HTML), "title: Hello")
	require.Contains(t, string(res.HTML), "<h1>Heading</h1>")
	require.Equal(t, "# Heading\n\nBody text.\n", string(res.Body))
}

func TestRender_NoFrontMatterMeansEmptyMeta(t *testing.T) {
	r := New()
	src := "Just a paragraph.\n"

	res, err := r.Render([]byte(src))
	require.NoError(t, err)
	require.Empty(t, res.Meta)
	require.Contains(t, string(res.HTML), "Just a paragraph.")
}

func TestRender_SharedRendererIsReusable(t *testing.T) {
	r := New()
	first, err := r.Render([]byte("alpha\n"))
	require.NoError(t, err)
	second, err := r.Render([]byte("alpha\n"))
	require.NoError(t, err)
	require.Equal(t, first.HTML, second.HTML)
}

func TestExcerpt_ShortInputUnchanged(t *testing.T) {
	in := "<p>short body</p>"
	require.Equal(t, in, Excerpt(in, DefaultExcerptLength))
}

func TestExcerpt_TruncatesAtWordBoundary(t *testing.T) {
	in := "<p>" + strings.Repeat("word ", 100) + "</p>"
	out := Excerpt(in, DefaultExcerptLength)

	require.True(t, strings.HasSuffix(out, "..."), "truncated excerpt must end with ellipsis, got %q", out)
	require.NotContains(t, out, "wor...") // never cut mid-word
	require.LessOrEqual(t, len([]rune(out)), DefaultExcerptLength+len("..."))
}

func TestExcerpt_NoSpaceFallsBackToRawCut(t *testing.T) {
	in := strings.Repeat("x", 400)
	out := Excerpt(in, DefaultExcerptLength)
	require.Equal(t, strings.Repeat("x", DefaultExcerptLength)+"...", out)
}

func TestExcerpt_StripsHeadings(t *testing.T) {
	in := "<h1>Post Title</h1>\n<p>The real preview text.</p>"
	out := Excerpt(in, DefaultExcerptLength)

	require.NotContains(t, out, "<h1>")
	require.NotContains(t, out, "Post Title")
	require.Contains(t, out, "The real preview text.")
}

func TestExcerpt_RemovesHeadingCutInHalf(t *testing.T) {
	// Spaceless body so the raw cut stands and slices through the
	// heading, leaving an unterminated <h2> fragment in the window.
	in := "<p>" + strings.Repeat("a", 280) + "</p><h2>HeadingSlicedByTheWindow</h2><p>after</p>"
	out := Excerpt(in, DefaultExcerptLength)

	require.NotContains(t, out, "<h2")
	require.NotContains(t, out, "Heading")
	require.True(t, strings.HasSuffix(out, "..."))
}

func TestExcerpt_RemovesBareHeadingOpenAtCut(t *testing.T) {
	// Spaceless body sized so the raw cut lands two characters into
	// the heading open tag, before the level digit, keeping only a
	// bare "<h" fragment.
	in := "<p>" + strings.Repeat("a", 295) + "<h2>HiddenTitle</h2><p>after</p>"
	out := Excerpt(in, DefaultExcerptLength)

	require.Equal(t, "<p>"+strings.Repeat("a", 295)+"...", out)
	require.NotContains(t, out, "<h")
	require.NotContains(t, out, "Hidden")
}

func TestExcerpt_NoCutOffsetLeaksHeadingMarkup(t *testing.T) {
	// Slide a heading across the cut boundary one character at a
	// time; no offset may leak heading markup or heading text.
	for pad := 260; pad <= 310; pad++ {
		in := "<p>" + strings.Repeat("a", pad) + "</p><h2>HiddenTitle</h2><p>after</p>"
		out := Excerpt(in, DefaultExcerptLength)

		require.NotContains(t, out, "<h", "pad %d", pad)
		require.NotContains(t, out, "Hidden", "pad %d", pad)
	}
}

func TestExcerpt_LengthBoundHoldsForMultibyteText(t *testing.T) {
	in := strings.Repeat("héllo wörld ", 60)
	out := Excerpt(in, DefaultExcerptLength)
	require.LessOrEqual(t, len([]rune(out)), DefaultExcerptLength+len("..."))
}
