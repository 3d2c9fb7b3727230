package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pagehook/internal/infrastructure/config"
	"github.com/GriffinCanCode/pagehook/internal/page"
)

func writePages(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "students"), 0o755))

	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("index.html", `<html><body><button class="add-student-btn">Add</button></body></html>`)
	write("students/list.html", `<html><body><table></table></body></html>`)
	write("notes.txt", "not a page")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(`<main><button class="add-student-btn">Add</button></main>`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	write("students/archived.html.gz", buf.String())

	return dir
}

func decode(t *testing.T, out []byte) []fileReport {
	t.Helper()
	var reports []fileReport
	require.NoError(t, json.Unmarshal(out, &reports))
	return reports
}

func TestRunInspectsMatchingFiles(t *testing.T) {
	dir := writePages(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-glob", dir + "/**/*.html*", "-activations", "2"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	reports := decode(t, stdout.Bytes())
	require.Len(t, reports, 3)

	byName := make(map[string]fileReport)
	for _, r := range reports {
		rel, err := filepath.Rel(dir, r.File)
		require.NoError(t, err)
		byName[filepath.ToSlash(rel)] = r
	}

	for _, name := range []string{"index.html", "students/archived.html.gz"} {
		r := byName[name]
		require.NotNil(t, r.Result, name)
		assert.True(t, r.Result.Consistent)
		for _, rep := range r.Result.Reports {
			assert.Equal(t, page.Attached.String(), rep.State)
			assert.Len(t, rep.Alerts, 2)
		}
	}

	list := byName["students/list.html"]
	require.NotNil(t, list.Result)
	for _, rep := range list.Result.Reports {
		assert.Equal(t, page.Skipped.String(), rep.State)
		assert.Empty(t, rep.Alerts)
	}
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.html"), []byte("  "), 0o644))
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-glob", filepath.Join(dir, "*.html"), "-engine", "go"}, &stdout, &stderr)
	assert.Equal(t, 1, code)

	reports := decode(t, stdout.Bytes())
	require.Len(t, reports, 1)
	assert.Nil(t, reports[0].Result)
	assert.Contains(t, reports[0].Error, "empty")
}

func TestRunXPathAssertion(t *testing.T) {
	dir := writePages(t)
	glob := filepath.Join(dir, "*.html")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-glob", glob, "-xpath", `//button[contains(@class, "add-student-btn")]`}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	reports := decode(t, stdout.Bytes())
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].XPathMatches)
	assert.Equal(t, 1, *reports[0].XPathMatches)
	assert.Empty(t, reports[0].Error)

	stdout.Reset()
	code = run(context.Background(), []string{"-glob", glob, "-xpath", "//table"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	reports = decode(t, stdout.Bytes())
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].Result)
	assert.Contains(t, reports[0].Error, "matched nothing")

	stdout.Reset()
	code = run(context.Background(), []string{"-glob", glob, "-xpath", "//button["}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	reports = decode(t, stdout.Bytes())
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0].Error, "invalid xpath")
}

func TestInspectConfigUsesSandboxSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Sandbox.Timeout = config.Duration(250 * time.Millisecond)
	cfg.Sandbox.MaxActivations = 3

	got := inspectConfig(cfg)
	assert.Equal(t, 1, got.PoolSize)
	assert.Equal(t, 3, got.MaxActivations)
	assert.Equal(t, 250*time.Millisecond, got.Sandbox.Timeout)
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "missing glob", args: nil, want: 2},
		{name: "unknown flag", args: []string{"-nope"}, want: 2},
		{name: "no matches", args: []string{"-glob", filepath.Join(t.TempDir(), "*.html")}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(context.Background(), tt.args, &stdout, &stderr))
			assert.Empty(t, stdout.String())
		})
	}
}
