/*
Package inspect runs the page glue over arbitrary markup and reports what a
visitor would have observed.

Two renditions of the glue can run over the same markup:

  - go: page.Bootstrapper against a dom.Document
  - script: the embedded JavaScript in a pooled goja sandbox

Each engine loads its own copy of the document, fires DOMContentLoaded,
clicks the hook element the requested number of times and records console
lines and alerts. A result is consistent when every engine reached the same
state with the same console and alert output.

Inline scripts in the markup never run: the script engine only evaluates the
embedded glue. The engines query the markup exactly as submitted. The copy
echoed back in Result.Markup is sanitized with bluemonday unless the request
is trusted.
*/
package inspect
