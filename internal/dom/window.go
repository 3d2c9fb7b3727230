package dom

import (
	"sync"

	"go.uber.org/zap"
)

// Window is the headless page.Host. It records console output and modal
// notices in the order they were produced.
type Window struct {
	logger *zap.Logger

	mu      sync.Mutex
	console []string
	alerts  []string
}

// NewWindow creates a window that mirrors its output to logger at debug level
func NewWindow(logger *zap.Logger) *Window {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Window{logger: logger}
}

// Log records a developer console line
func (w *Window) Log(message string) {
	w.mu.Lock()
	w.console = append(w.console, message)
	w.mu.Unlock()

	w.logger.Debug("console", zap.String("message", message))
}

// Alert records a modal notice
func (w *Window) Alert(message string) {
	w.mu.Lock()
	w.alerts = append(w.alerts, message)
	w.mu.Unlock()

	w.logger.Debug("alert", zap.String("message", message))
}

// Console returns the recorded console lines
func (w *Window) Console() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.console...)
}

// Alerts returns the recorded modal notices
func (w *Window) Alerts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.alerts...)
}
