package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/sessman/internal/session"
)

// Transcript renders the selected message lines of s as Markdown, one
// section per line in file order.
func Transcript(s *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session %s\n", s.ID)

	for _, l := range s.Lines {
		if !l.IsMessage || !l.Selected {
			continue
		}
		fmt.Fprintf(&b, "\n## %s (line %d)\n\n", Title(l.Kind), l.Index)
		text := l.PreviewText()
		if strings.TrimSpace(text) == "" {
			text = "_(no text content)_"
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

// Title capitalizes the first letter of a record kind for headings.
func Title(kind string) string {
	r, size := utf8.DecodeRuneInString(kind)
	if r == utf8.RuneError {
		return kind
	}
	return string(unicode.ToUpper(r)) + kind[size:]
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML converts Markdown to a standalone HTML page using goldmark.
// Raw HTML inside the Markdown is not passed through.
func HTML(title, md string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return page.String(), nil
}
