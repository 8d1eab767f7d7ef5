// Package markdown renders AI message content to HTML for display.
// Rendering is a pure function of the input; transcript state never
// leaks in here.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md is the shared converter. GFM covers the tables, strikethrough, and
// autolinks that model output commonly contains.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Render converts markdown message content to HTML.
func Render(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
