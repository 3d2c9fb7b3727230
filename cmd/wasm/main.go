//go:build js && wasm

// Command wasm is the browser build of the page bootstrapper.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o main.wasm ./cmd/wasm
//	cp "$(go env GOROOT)/lib/wasm/wasm_exec.js" .
//
// Serve both files from WASM_DIR with PAGE_RUNTIME=wasm.
package main

import (
	"github.com/GriffinCanCode/pagehook/internal/page"
	"github.com/GriffinCanCode/pagehook/internal/page/browser"
)

func main() {
	doc := browser.NewDocument()
	browser.Ready(doc, page.New(browser.NewHost()))

	// keep the runtime alive for the click listener
	select {}
}
