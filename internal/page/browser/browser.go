//go:build js && wasm

// Package browser binds the page bootstrapper to the real browser document
// through syscall/js.
package browser

import (
	"syscall/js"

	"github.com/GriffinCanCode/pagehook/internal/page"
)

// Document wraps the global document object
type Document struct {
	value js.Value
}

// Element wraps a DOM element
type Element struct {
	value js.Value
}

// Host maps the bootstrapper outputs to console.log and window.alert
type Host struct {
	global js.Value
}

// NewDocument returns the current page's document
func NewDocument() *Document {
	return &Document{value: js.Global().Get("document")}
}

// NewHost returns a host bound to the global window
func NewHost() *Host {
	return &Host{global: js.Global()}
}

// QuerySelector returns the first element matching selector
func (d *Document) QuerySelector(selector string) (page.Element, bool) {
	el := d.value.Call("querySelector", selector)
	if !el.Truthy() {
		return nil, false
	}
	return &Element{value: el}, true
}

// AddEventListener registers fn on the document
func (d *Document) AddEventListener(eventType string, fn page.Listener) {
	addListener(d.value, eventType, fn)
}

// ReadyState reports document.readyState
func (d *Document) ReadyState() string {
	return d.value.Get("readyState").String()
}

// AddEventListener registers fn on the element
func (e *Element) AddEventListener(eventType string, fn page.Listener) {
	addListener(e.value, eventType, fn)
}

// Log writes to the developer console
func (h *Host) Log(message string) {
	h.global.Get("console").Call("log", message)
}

// Alert shows the blocking modal notice
func (h *Host) Alert(message string) {
	h.global.Call("alert", message)
}

// Ready runs boot on DOMContentLoaded, or right away when the signal has
// already fired before the wasm module finished instantiating.
func Ready(doc *Document, boot *page.Bootstrapper) {
	if doc.ReadyState() == "loading" {
		boot.Install(doc)
		return
	}
	boot.Run(doc)
}

// The js.Func is never released: listeners live as long as the page.
func addListener(target js.Value, eventType string, fn page.Listener) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ev := page.Event{Type: eventType}
		if len(args) > 0 && args[0].Truthy() {
			ev.Type = args[0].Get("type").String()
		}
		fn(ev)
		return nil
	})
	target.Call("addEventListener", eventType, cb)
}
