package web

import (
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFuncs = template.FuncMap{
	"fieldError": func(any, string) string { return "" },
	"formatTime": func(any) string { return "" },
	"filterMenu": func(string, any) any { return nil },
	"formFields": func(any, any) any { return nil },
}

func TestTemplates_Embedded(t *testing.T) {
	tmpl, err := Templates("", testFuncs)
	require.NoError(t, err)

	for _, name := range []string{
		"index", "books", "book_new", "book_detail", "book_return",
		"patrons", "patron_new", "patron_detail",
		"loans", "loan_new", "activity", "error", "header", "footer",
	} {
		assert.NotNil(t, tmpl.Lookup(name), "template %s", name)
	}
}

func TestTemplates_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(`{{define "page"}}hello{{end}}`), 0o644))

	tmpl, err := Templates(dir, nil)
	require.NoError(t, err)
	assert.NotNil(t, tmpl.Lookup("page"))
}

func TestTemplates_MissingDirectory(t *testing.T) {
	_, err := Templates(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestStatic_Embedded(t *testing.T) {
	f, err := Static("").Open("style.css")
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
