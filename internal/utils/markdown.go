package utils

import (
	"bytes"
	stdhtml "html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy      = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts a proposal description to sanitized HTML.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}

	sanitized := policy.SanitizeBytes(buf.Bytes())
	return EnhanceHTMLContent(string(sanitized))
}

const maxUnescapePasses = 8

// PlainText strips every tag from user input and trims surrounding space.
// Titles, descriptions and comments are stored as plain text. Entity-encoded
// markup is decoded and stripped again until the value settles.
func PlainText(s string) string {
	for i := 0; i < maxUnescapePasses; i++ {
		next := stdhtml.UnescapeString(plainPolicy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(next)
		}
		s = next
	}
	// Still changing: keep the sanitized, escaped form.
	return strings.TrimSpace(plainPolicy.Sanitize(s))
}
