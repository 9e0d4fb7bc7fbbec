// Package web embeds the HTML pages served by the handlers.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var files embed.FS

// Templates parses every embedded page. Pages are looked up by file name,
// e.g. "dashboard.tmpl".
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.tmpl"))
}
