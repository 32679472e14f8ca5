// Package web holds the HTML page of the submission service.
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	IndexTemplate = "index.html"
	TimeLayout    = "1/2/2006, 3:04:05 PM"
)

// FormatTime renders a submission timestamp for humans.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"formatTime": FormatTime,
		"inc":        func(i int) int { return i + 1 },
	}).ParseFS(templatesFS, "templates/*.html"))
}
