// Package main runs the student records page server.
//
// The server renders the page, serves its glue (JavaScript or a Go wasm
// module), and exposes a headless inspection API that runs the glue over
// submitted markup.
//
// Configuration, later sources winning:
//   - defaults
//   - environment variables (PORT, PAGE_RUNTIME, LOG_LEVEL, ...)
//   - config file (-config or PAGEHOOK_CONFIG), YAML or TOML
//   - CLI flags
//
// Usage:
//
//	# Script runtime
//	./server -port 8000
//
//	# Wasm runtime, development logging
//	GOOS=js GOARCH=wasm go build -o web/main.wasm ./cmd/wasm
//	cp "$(go env GOROOT)/lib/wasm/wasm_exec.js" web/
//	./server -runtime wasm -wasm-dir web -dev
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown
package main
