package richtext

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("p", "span", "blockquote")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize strips everything but user generated content markup from s
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// MarkdownToHTML renders markdown source to html
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// ToMarkdown converts an html fragment to markdown
func ToMarkdown(s string) (string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	body, err := findNodeByTag(doc, "body")
	if err != nil {
		body = doc
	}
	markdownBytes, err := htmltomarkdown.ConvertNode(body)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(string(markdownBytes)), nil
}

// Text is a rich text field rendered for the different consumers
type Text struct {
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
	Plain    string `json:"plain"`
}

// Render normalizes a stored text field in the given format. Unknown formats
// are treated as html.
func Render(source, format string) (Text, error) {
	if strings.TrimSpace(source) == "" {
		return Text{}, nil
	}
	raw := source
	if format == FormatMarkdown {
		rendered, err := MarkdownToHTML(source)
		if err != nil {
			return Text{}, err
		}
		raw = rendered
	}
	safe := Sanitize(raw)
	md, err := ToMarkdown(safe)
	if err != nil {
		return Text{}, err
	}
	plain, err := PlainText(safe)
	if err != nil {
		return Text{}, err
	}
	return Text{
		HTML:     strings.TrimSpace(safe),
		Markdown: md,
		Plain:    plain,
	}, nil
}
