// Command pagecheck runs the page glue headlessly over HTML files and reports
// what a visitor would see.
//
//	pagecheck -glob 'templates/**/*.html' -activations 2 -engine both
//	pagecheck -glob 'templates/*.html' -xpath '//main//button'
//
// Files ending in .gz are decompressed first. With -xpath every file must
// contain at least one element matching the expression. Sandbox limits come
// from the server's environment (SANDBOX_TIMEOUT, MAX_ACTIVATIONS).
//
// The report is a JSON array on stdout. The exit status is 1 when any file
// fails to inspect, the engines disagree or the xpath matches nothing, 2 on
// bad usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/pagehook/internal/dom"
	"github.com/GriffinCanCode/pagehook/internal/infrastructure/config"
	"github.com/GriffinCanCode/pagehook/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pagehook/internal/inspect"
	"github.com/GriffinCanCode/pagehook/internal/sandbox"
)

type fileReport struct {
	File         string          `json:"file"`
	Result       *inspect.Result `json:"result,omitempty"`
	XPathMatches *int            `json:"xpath_matches,omitempty"`
	Error        string          `json:"error,omitempty"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pagecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	pattern := fs.String("glob", "", "doublestar glob of HTML files")
	activations := fs.Int("activations", 1, "clicks on the hook element per file")
	engine := fs.String("engine", string(inspect.EngineBoth), "go, script or both")
	trusted := fs.Bool("trusted", false, "echo the markup without sanitizing")
	xpath := fs.String("xpath", "", "XPath every file must match at least once")
	level := fs.String("log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *pattern == "" {
		fmt.Fprintln(stderr, "pagecheck: -glob is required")
		fs.Usage()
		return 2
	}

	logger, err := logging.New(logging.Config{Level: *level, Development: true, OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Fprintf(stderr, "pagecheck: %v\n", err)
		return 2
	}
	defer logger.Sync()

	files, err := doublestar.FilepathGlob(*pattern, doublestar.WithFilesOnly())
	if err != nil {
		fmt.Fprintf(stderr, "pagecheck: bad glob: %v\n", err)
		return 2
	}
	if len(files) == 0 {
		fmt.Fprintf(stderr, "pagecheck: no files match %s\n", *pattern)
		return 1
	}
	sort.Strings(files)

	svc, err := inspect.New(inspectConfig(config.LoadOrDefault()), inspect.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "pagecheck: %v\n", err)
		return 1
	}
	defer svc.Close()

	status := 0
	reports := make([]fileReport, 0, len(files))
	for _, file := range files {
		report := fileReport{File: file}

		markup, err := readMarkup(file)
		if err == nil {
			report.Result, err = svc.Inspect(ctx, inspect.Request{
				HTML:        markup,
				Activations: activations,
				Engine:      *engine,
				Trusted:     *trusted,
			})
		}
		if err == nil && *xpath != "" {
			var n int
			n, err = countXPath(markup, *xpath)
			report.XPathMatches = &n
			if err == nil && n == 0 {
				err = fmt.Errorf("xpath %q matched nothing", *xpath)
			}
		}

		switch {
		case err != nil:
			report.Error = err.Error()
			status = 1
			logger.Warn("Inspection failed", zap.String("file", file), zap.Error(err))
		case !report.Result.Consistent:
			status = 1
			logger.Warn("Engines disagree", zap.String("file", file))
		}
		reports = append(reports, report)
	}

	out, err := sonic.MarshalIndent(reports, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "pagecheck: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return status
}

// inspectConfig runs one sandbox at a time with the configured limits
func inspectConfig(cfg *config.Config) inspect.Config {
	sandboxCfg := sandbox.DefaultConfig()
	sandboxCfg.Timeout = cfg.Sandbox.Timeout.Std()
	return inspect.Config{
		MaxActivations: cfg.Sandbox.MaxActivations,
		PoolSize:       1,
		Sandbox:        sandboxCfg,
	}
}

func countXPath(markup, expr string) (int, error) {
	doc, err := dom.Load(markup)
	if err != nil {
		return 0, err
	}
	els, err := doc.QueryXPath(expr)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// readMarkup reads a file, decompressing .gz, up to one byte past the markup
// limit so oversize input is still rejected by validation
func readMarkup(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(io.LimitReader(r, dom.MaxMarkupSize+1))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
