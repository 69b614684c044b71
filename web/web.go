// Package web holds the HTML templates and static assets of the library
// UI. They are embedded in the binary; TEMPLATES_PATH and STATIC_PATH
// point at a directory on disk instead, which is handy while editing them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template. An empty dir uses the embedded copy.
func Templates(dir string, funcs template.FuncMap) (*template.Template, error) {
	tmpl := template.New("").Funcs(funcs)
	if dir == "" {
		parsed, err := tmpl.ParseFS(templateFS, "templates/*.html")
		if err != nil {
			return nil, fmt.Errorf("parse embedded templates: %w", err)
		}
		return parsed, nil
	}
	parsed, err := tmpl.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse templates in %s: %w", dir, err)
	}
	return parsed, nil
}

// Static returns the file system served under /static.
func Static(dir string) http.FileSystem {
	if dir != "" {
		return http.Dir(dir)
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embedded tree always has a static directory.
		panic(err)
	}
	return http.FS(sub)
}
