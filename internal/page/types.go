package page

// Contract with the page template and the user-visible texts.
const (
	HookSelector      = ".add-student-btn"
	LoadedMessage     = "Flask project loaded successfully!"
	ComingSoonMessage = "Add Student functionality coming soon!"
)

// Event types the bootstrapper listens for
const (
	EventContentLoaded = "DOMContentLoaded"
	EventClick         = "click"
)

// Event is the host event delivered to a listener
type Event struct {
	Type string
}

// Listener handles a dispatched event
type Listener func(Event)

// EventTarget accepts event listeners
type EventTarget interface {
	AddEventListener(eventType string, fn Listener)
}

// Element is a host-owned handle to a document element
type Element interface {
	EventTarget
}

// Document is the queryable page structure
type Document interface {
	EventTarget
	// QuerySelector returns the first element in document order matching selector.
	QuerySelector(selector string) (Element, bool)
}

// Host provides the developer console and the modal notice
type Host interface {
	Log(message string)
	Alert(message string)
}

// Observer receives bootstrapper lifecycle notifications
type Observer interface {
	Ran(state State)
	Activated()
}
