package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	out := Sanitize(`<p>Hello <script>alert(1)</script><a href="https://example.com">link</a></p>`)
	assert.NotContains(t, out, "script")
	assert.Contains(t, out, `rel="nofollow"`)
}

func TestPlainText(t *testing.T) {
	text, err := PlainText("<p>Great   work,\n<strong>on time</strong>.</p><p>Next</p><style>p{}</style>")
	require.NoError(t, err)
	assert.Equal(t, "Great work, on time. Next", text)
}

func TestRenderHTML(t *testing.T) {
	text, err := Render(`<p>Great work, <script>alert(1)</script><strong>on time</strong>.</p>`, FormatHTML)
	require.NoError(t, err)
	assert.NotContains(t, text.HTML, "script")
	assert.Contains(t, text.HTML, "<strong>on time</strong>")
	assert.Contains(t, text.Markdown, "**on time**")
	assert.NotContains(t, text.Plain, "alert")
}

func TestRenderMarkdown(t *testing.T) {
	text, err := Render("Would hire **again**.", FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, text.HTML, "<strong>again</strong>")
	assert.Equal(t, "Would hire again.", text.Plain)
	assert.Contains(t, text.Markdown, "**again**")
}

func TestRenderEmpty(t *testing.T) {
	text, err := Render("  ", FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, Text{}, text)
}
