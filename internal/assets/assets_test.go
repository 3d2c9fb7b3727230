package assets

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pagehook/internal/page"
)

func TestScriptCarriesContract(t *testing.T) {
	script := Script()

	assert.Contains(t, script, "'"+page.EventContentLoaded+"'")
	assert.Contains(t, script, "'"+page.HookSelector+"'")
	assert.Contains(t, script, "'"+page.LoadedMessage+"'")
	assert.Contains(t, script, "'"+page.ComingSoonMessage+"'")
}

func TestReadStatic(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "plain", path: ScriptPath},
		{name: "leading slash", path: "/" + ScriptPath},
		{name: "traversal", path: "../templates/index.html", wantErr: true},
		{name: "missing", path: "js/missing.js", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadStatic(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Script(), string(data))
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Contains(t, ContentType("js/main.js", []byte(Script())), "javascript")
	assert.Contains(t, ContentType("noext", []byte("<!doctype html><html><body></body></html>")), "text/html")
	assert.Contains(t, ContentType("blob", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}), "image/png")
}

func TestTemplatesRender(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	tests := []struct {
		name        string
		data        PageData
		contains    []string
		notContains []string
	}{
		{
			name:        "script runtime",
			data:        PageData{Title: "Student Records", Runtime: "script", StaticPath: "/static", WasmPath: "/wasm"},
			contains:    []string{`class="add-student-btn"`, `src="/static/js/main.js"`, "<title>Student Records</title>"},
			notContains: []string{"wasm_exec.js"},
		},
		{
			name:        "wasm runtime",
			data:        PageData{Title: "Students", Runtime: "wasm", StaticPath: "/static", WasmPath: "/wasm"},
			contains:    []string{`class="add-student-btn"`, `src="/wasm/wasm_exec.js"`, "main.wasm"},
			notContains: []string{"js/main.js"},
		},
		{
			name:     "escaped title",
			data:     PageData{Title: "<b>x</b>", Runtime: "script"},
			contains: []string{"&lt;b&gt;x&lt;/b&gt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, IndexTemplate, tt.data))
			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.False(t, strings.Contains(out, s), "unexpected %q", s)
			}
		})
	}
}
