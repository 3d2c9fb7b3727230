// Package assets embeds the page glue script and the page template.
package assets

import (
	"embed"
	"html/template"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

//go:embed static templates
var files embed.FS

// ScriptPath is the page glue script, relative to the static root
const ScriptPath = "js/main.js"

// IndexTemplate is the name of the page template
const IndexTemplate = "index.html"

// PageData feeds the index template
type PageData struct {
	Title      string
	Runtime    string // "script" or "wasm"
	StaticPath string
	WasmPath   string
}

// Static returns the static asset tree
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Script returns the JavaScript page glue
func Script() string {
	data, err := fs.ReadFile(Static(), ScriptPath)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// ReadStatic reads a static asset by its path under the static root
func ReadStatic(name string) ([]byte, error) {
	return fs.ReadFile(Static(), strings.TrimPrefix(path.Clean("/"+name), "/"))
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}

// ContentType picks a content type for an asset. The file extension wins
// when it is registered; content sniffing covers the rest.
func ContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}
