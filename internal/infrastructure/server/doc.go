/*
Package server wires the page server together.

Middleware order: recovery, tracing, metrics, CORS, per-IP rate limit. The
whole router sits behind gzhttp when compression is enabled.

Routes:

	GET  /                   student records page
	GET  /static/*filepath   embedded page glue and assets
	GET  /wasm/*filepath     wasm_exec.js and main.wasm (wasm runtime only)
	GET  /health             status, sandbox pool, running totals
	GET  /metrics            Prometheus exposition
	POST /api/inspect        run the page glue over submitted markup
*/
package server
