package dom

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/pagehook/internal/page"
)

var (
	ErrAlreadyLoaded   = errors.New("DOMContentLoaded already fired")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrForeignElement  = errors.New("element belongs to another document")
)

// Document is a headless, queryable page with event listener registries.
// Listeners run synchronously on the dispatching goroutine, one dispatch at a
// time. A listener must not dispatch events itself.
type Document struct {
	doc *goquery.Document

	mu        sync.Mutex
	listeners map[*html.Node]map[string][]page.Listener
	loaded    bool

	dispatchMu sync.Mutex
}

// Element is a handle to one node of a Document
type Element struct {
	doc  *Document
	node *html.Node
}

func newDocument(doc *goquery.Document) *Document {
	return &Document{
		doc:       doc,
		listeners: make(map[*html.Node]map[string][]page.Listener),
	}
}

// root is the listener key for the document itself
func (d *Document) root() *html.Node {
	return d.doc.Nodes[0]
}

// ValidateSelector reports whether selector is a valid CSS selector group
func ValidateSelector(selector string) error {
	if _, err := cascadia.ParseGroup(selector); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
	}
	return nil
}

// QuerySelector implements page.Document
func (d *Document) QuerySelector(selector string) (page.Element, bool) {
	el, ok := d.Find(selector)
	if !ok {
		return nil, false
	}
	return el, true
}

// Find returns the first element in document order matching selector
func (d *Document) Find(selector string) (*Element, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return d.wrap(sel.Nodes[0]), true
}

// FindAll returns every element matching selector in document order
func (d *Document) FindAll(selector string) []*Element {
	sel := d.doc.Find(selector)
	out := make([]*Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// QueryXPath returns the elements matching an XPath expression
func (d *Document) QueryXPath(expr string) ([]*Element, error) {
	nodes, err := htmlquery.QueryAll(d.root(), expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, d.wrap(n))
		}
	}
	return out, nil
}

// Title returns the document title text
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// AddEventListener implements page.EventTarget for the document
func (d *Document) AddEventListener(eventType string, fn page.Listener) {
	d.addListener(d.root(), eventType, fn)
}

// Loaded reports whether DOMContentLoaded has fired
func (d *Document) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// FireContentLoaded dispatches DOMContentLoaded. It fires at most once per
// document.
func (d *Document) FireContentLoaded() error {
	d.mu.Lock()
	if d.loaded {
		d.mu.Unlock()
		return ErrAlreadyLoaded
	}
	d.loaded = true
	d.mu.Unlock()

	d.dispatch(d.root(), page.EventContentLoaded)
	return nil
}

// Click dispatches a click on el and returns the number of listeners run
func (d *Document) Click(el *Element) (int, error) {
	if el == nil || el.doc != d {
		return 0, ErrForeignElement
	}
	return d.dispatch(el.node, page.EventClick), nil
}

// ClickSelector clicks the first element matching selector. It reports false
// when nothing matches.
func (d *Document) ClickSelector(selector string) (int, bool) {
	el, ok := d.Find(selector)
	if !ok {
		return 0, false
	}
	n, _ := d.Click(el)
	return n, true
}

// ListenerCount returns how many listeners for eventType are registered on
// elements (the document itself excluded)
func (d *Document) ListenerCount(eventType string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	total := 0
	for node, byType := range d.listeners {
		if node == d.root() {
			continue
		}
		total += len(byType[eventType])
	}
	return total
}

func (d *Document) addListener(node *html.Node, eventType string, fn page.Listener) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	byType, ok := d.listeners[node]
	if !ok {
		byType = make(map[string][]page.Listener)
		d.listeners[node] = byType
	}
	byType[eventType] = append(byType[eventType], fn)
}

func (d *Document) dispatch(node *html.Node, eventType string) int {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	d.mu.Lock()
	fns := append([]page.Listener(nil), d.listeners[node][eventType]...)
	d.mu.Unlock()

	ev := page.Event{Type: eventType}
	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}

func (d *Document) wrap(n *html.Node) *Element {
	return &Element{doc: d, node: n}
}

// AddEventListener implements page.EventTarget for the element
func (e *Element) AddEventListener(eventType string, fn page.Listener) {
	e.doc.addListener(e.node, eventType, fn)
}

// Node returns the underlying html node
func (e *Element) Node() *html.Node {
	return e.node
}

// TagName returns the upper-cased tag name, as browsers report it
func (e *Element) TagName() string {
	return strings.ToUpper(e.node.Data)
}

// Attr returns an attribute value
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// ID returns the id attribute
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// ClassName returns the class attribute
func (e *Element) ClassName() string {
	v, _ := e.Attr("class")
	return v
}

// TextContent returns the concatenated text of the element
func (e *Element) TextContent() string {
	return e.doc.doc.FindNodes(e.node).Text()
}

// Listeners returns how many listeners for eventType are registered on e
func (e *Element) Listeners(eventType string) int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return len(e.doc.listeners[e.node][eventType])
}
