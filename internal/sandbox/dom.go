package sandbox

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/pagehook/internal/dom"
	"github.com/GriffinCanCode/pagehook/internal/page"
)

// injectDOM exposes doc as the global document and wires alert to the host
func (r *Runtime) injectDOM(doc *dom.Document) {
	proxies := make(map[*html.Node]*goja.Object)
	gen := r.gen

	proxy := func(el *dom.Element) goja.Value {
		if obj, ok := proxies[el.Node()]; ok {
			return obj
		}
		obj := r.createElementProxy(el, gen)
		proxies[el.Node()] = obj
		return obj
	}

	document := r.vm.NewObject()

	document.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		eventType, fn := r.listenerArgs(call)
		doc.AddEventListener(eventType, r.bridgeListener(fn, gen))
		return goja.Undefined()
	})

	document.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		selector := r.selectorArg(call)
		el, ok := doc.Find(selector)
		if !ok {
			return goja.Null()
		}
		return proxy(el)
	})

	document.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		selector := r.selectorArg(call)
		var list []interface{}
		for _, el := range doc.FindAll(selector) {
			list = append(list, proxy(el))
		}
		return r.vm.NewArray(list...)
	})

	document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).String()
		for _, el := range doc.FindAll("[id]") {
			if el.ID() == id {
				return proxy(el)
			}
		}
		return goja.Null()
	})

	document.Set("readyState", func() string {
		if doc.Loaded() {
			return "interactive"
		}
		return "loading"
	}())
	document.Set("title", doc.Title())

	r.vm.Set("document", document)
	r.vm.Set("alert", func(call goja.FunctionCall) goja.Value {
		if r.host == nil {
			return goja.Undefined()
		}
		// alert() with no argument shows an empty dialog
		message := ""
		if len(call.Arguments) > 0 {
			message = call.Arguments[0].String()
		}
		r.host.Alert(message)
		return goja.Undefined()
	})
}

// createElementProxy creates a proxy for a DOM element
func (r *Runtime) createElementProxy(el *dom.Element, gen uint64) *goja.Object {
	obj := r.vm.NewObject()
	obj.Set("tagName", el.TagName())
	obj.Set("id", el.ID())
	obj.Set("className", el.ClassName())
	obj.Set("textContent", el.TextContent())
	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok := el.Attr(call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return r.vm.ToValue(v)
	})
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		eventType, fn := r.listenerArgs(call)
		el.AddEventListener(eventType, r.bridgeListener(fn, gen))
		return goja.Undefined()
	})
	return obj
}

// selectorArg validates the selector argument, throwing like a browser would
func (r *Runtime) selectorArg(call goja.FunctionCall) string {
	selector := call.Argument(0).String()
	if err := dom.ValidateSelector(selector); err != nil {
		panic(r.vm.NewGoError(err))
	}
	return selector
}

func (r *Runtime) listenerArgs(call goja.FunctionCall) (string, goja.Callable) {
	eventType := call.Argument(0).String()
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(r.vm.NewTypeError("addEventListener: listener is not a function"))
	}
	return eventType, fn
}

// bridgeListener turns a script callback into a page.Listener. The callback
// runs under the runtime lock with the configured timeout; a runtime that has
// been reset since registration ignores the event.
func (r *Runtime) bridgeListener(fn goja.Callable, gen uint64) page.Listener {
	return func(ev page.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.vm == nil || r.gen != gen {
			return
		}

		event := r.vm.NewObject()
		event.Set("type", ev.Type)

		stop := r.guard(context.Background())
		_, err := fn(goja.Undefined(), event)
		stop()

		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("%s listener: %w", ev.Type, r.wrapError(err)))
		}
	}
}
