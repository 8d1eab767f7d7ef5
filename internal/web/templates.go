package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/RaoAkif/BotFusion/internal/chat"
	"github.com/RaoAkif/BotFusion/internal/markdown"
)

// transcriptTemplate renders a stored session as a read-only page.
// AI message content is markdown-rendered; user content stays plain.
var transcriptTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Chat {{.Title}}</title></head>
<body style="font-family: sans-serif; max-width: 48rem; margin: 2rem auto;">
<h2>Chat from {{.Title}}</h2>
{{range .Messages}}
<div style="margin: 1rem 0;">
  <strong>{{.Role}}:</strong>
  {{if .HTML}}{{.HTML}}{{else}}<p>{{.Content}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`))

// transcriptData is the template context for the transcript page.
type transcriptData struct {
	Title    string
	Messages []transcriptMessage
}

type transcriptMessage struct {
	Role    string
	Content string
	HTML    template.HTML
}

// renderTranscript writes the HTML view of a stored session. Markdown
// render failures fall back to the raw content rather than dropping the
// message.
func renderTranscript(w io.Writer, rec *chat.Record) error {
	data := transcriptData{
		Title:    formatTimestamp(rec.Timestamp),
		Messages: make([]transcriptMessage, 0, len(rec.Messages)),
	}

	for _, m := range rec.Messages {
		row := transcriptMessage{Role: m.Role, Content: m.Content}
		if m.Role == chat.RoleAI {
			if html, err := markdown.Render(m.Content); err == nil {
				row.HTML = html
			}
		}
		data.Messages = append(data.Messages, row)
	}

	if err := transcriptTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("execute transcript template: %w", err)
	}
	return nil
}

// formatTimestamp renders a record timestamp for display, falling back
// to the raw key when it does not parse.
func formatTimestamp(timestamp string) string {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}
