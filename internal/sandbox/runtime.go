package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/pagehook/internal/dom"
	"github.com/GriffinCanCode/pagehook/internal/page"
)

// Runtime wraps a goja VM running page scripts against a headless document.
// Listeners registered by a script stay callable after Execute returns.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex
	host   page.Host
	gen    uint64 // bumped on every VM rebuild

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex

	// Uncaught listener errors
	errs []error
}

// New creates a new sandboxed runtime
func New(config Config) (*Runtime, error) {
	r := &Runtime{
		config:  config,
		console: []LogEntry{},
	}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) init() error {
	r.vm = goja.New()
	r.gen++
	if r.config.MaxCallStackSize > 0 {
		r.vm.SetMaxCallStackSize(r.config.MaxCallStackSize)
	}
	return r.setupGlobals()
}

// Execute runs script with doc as the page and host receiving console and
// alert output. doc and host may be nil for plain scripts.
func (r *Runtime) Execute(ctx context.Context, script string, doc *dom.Document, host page.Host) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrRuntimeClose
	}

	start := time.Now()
	r.host = host

	// Clear console
	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()
	r.errs = nil

	if doc != nil && r.config.EnableDOM {
		r.injectDOM(doc)
	}

	stop := r.guard(ctx)
	val, err := r.vm.RunString(script)
	stop()

	result := &Result{
		Duration: time.Since(start),
		Console:  r.Console(),
	}
	if err != nil {
		return result, r.wrapError(err)
	}
	result.Value = exportValue(val)
	return result, nil
}

// Console returns all console output since the last Execute, listener
// output included
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	return append([]LogEntry{}, r.console...)
}

// Errors returns errors thrown by listeners since the last Execute
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// guard interrupts the VM on timeout or context cancellation until the
// returned stop func is called
func (r *Runtime) guard(ctx context.Context) func() {
	timeout := r.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	timer := time.NewTimer(timeout)
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	return func() {
		timer.Stop()
		close(done)
		<-exited
		r.vm.ClearInterrupt()
	}
}

func (r *Runtime) wrapError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%w: %v", ErrInterrupted, interrupted.Value())
	}
	return fmt.Errorf("script failed: %w", err)
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() error {
	// Remove dangerous globals
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error"} {
			if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
				return err
			}
		}
		if err := r.vm.Set("console", console); err != nil {
			return err
		}
	}

	// Timers are inert
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	r.vm.Set("setTimeout", noop)
	r.vm.Set("setInterval", noop)

	return r.vm.Set("window", r.vm.GlobalObject())
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		msg := strings.Join(parts, " ")

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		if r.host != nil {
			r.host.Log(msg)
		}
		return goja.Undefined()
	}
}

// exportValue converts goja value to Go value
func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Reset clears the runtime state
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.host = nil
	r.errs = nil
	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()
	return r.init()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.host = nil
	r.console = nil
	return nil
}
