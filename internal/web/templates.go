package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006")
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v)
	},
	"signed": func(v float64) string {
		return fmt.Sprintf("%+.1f%%", v)
	},
	"same": func(a, b interface{}) bool {
		return fmt.Sprint(a) == fmt.Sprint(b)
	},
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}
