package page

import "sync"

// State is the bootstrapper lifecycle state
type State int

const (
	Unattached State = iota
	Attached
	Skipped
)

func (s State) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Attached:
		return "attached"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Option configures a Bootstrapper
type Option func(*Bootstrapper)

// WithObserver registers an observer for runs and activations
func WithObserver(o Observer) Option {
	return func(b *Bootstrapper) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// Bootstrapper wires the add-student hook on a single page load
type Bootstrapper struct {
	host      Host
	observers []Observer

	once  sync.Once
	mu    sync.RWMutex
	state State
}

// New creates a bootstrapper reporting to host
func New(host Host, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{host: host}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Install defers Run until the document fires DOMContentLoaded
func (b *Bootstrapper) Install(doc Document) {
	doc.AddEventListener(EventContentLoaded, func(Event) {
		b.Run(doc)
	})
}

// Run performs the load-time work. Only the first call has any effect.
func (b *Bootstrapper) Run(doc Document) State {
	b.once.Do(func() {
		b.host.Log(LoadedMessage)

		next := Skipped
		if el, ok := doc.QuerySelector(HookSelector); ok {
			el.AddEventListener(EventClick, b.onActivate)
			next = Attached
		}

		b.mu.Lock()
		b.state = next
		b.mu.Unlock()

		for _, o := range b.observers {
			o.Ran(next)
		}
	})
	return b.State()
}

// State returns the current lifecycle state
func (b *Bootstrapper) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Bootstrapper) onActivate(Event) {
	b.host.Alert(ComingSoonMessage)
	for _, o := range b.observers {
		o.Activated()
	}
}
