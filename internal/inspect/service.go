package inspect

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/pagehook/internal/assets"
	"github.com/GriffinCanCode/pagehook/internal/dom"
	"github.com/GriffinCanCode/pagehook/internal/page"
	"github.com/GriffinCanCode/pagehook/internal/sandbox"
	"github.com/GriffinCanCode/pagehook/internal/shared/id"
)

// Service inspects markup under the Go and script renditions of the page glue
type Service struct {
	config    Config
	pool      *sandbox.Pool
	sanitizer *bluemonday.Policy
	script    string
	recorder  Recorder
	logger    *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithRecorder reports metrics to rec
func WithRecorder(rec Recorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.recorder = rec
		}
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an inspection service with its own sandbox pool
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.MaxActivations <= 0 {
		cfg.MaxActivations = DefaultConfig().MaxActivations
	}

	pool, err := sandbox.NewPool(cfg.Sandbox, cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("create sandbox pool: %w", err)
	}

	s := &Service{
		config:    cfg,
		pool:      pool,
		sanitizer: newSanitizer(),
		script:    assets.Script(),
		recorder:  nopRecorder{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// newSanitizer keeps the structure the glue cares about and drops scripts
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("button", "main", "section", "header", "footer", "nav")
	p.AllowAttrs("class", "id").Globally()
	p.AllowAttrs("type").OnElements("button")
	return p
}

// Sanitize strips markup down to inert structure for display
func (s *Service) Sanitize(markup string) string {
	return s.sanitizer.Sanitize(markup)
}

// Inspect runs the requested engines over the markup and compares them
func (s *Service) Inspect(ctx context.Context, req Request) (*Result, error) {
	engine, err := ParseEngine(req.Engine)
	if err != nil {
		return nil, err
	}

	activations := 1
	if req.Activations != nil {
		activations = *req.Activations
	}
	if activations < 0 || activations > s.config.MaxActivations {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidActivations, activations, s.config.MaxActivations)
	}

	if err := dom.ValidateMarkup([]byte(req.HTML)); err != nil {
		return nil, err
	}
	markup := req.HTML

	// The engines always see the page as submitted. Only the echoed copy is
	// sanitized, so sanitizing never moves or removes the hook element.
	result := &Result{ID: id.NewInspectionID(), Markup: markup}
	if !req.Trusted {
		result.Markup = s.Sanitize(markup)
	}
	for _, e := range engine.expand() {
		var report *Report
		switch e {
		case EngineGo:
			report, err = s.runGo(ctx, markup, activations)
		case EngineScript:
			report, err = s.runScript(ctx, markup, activations)
		}
		if err != nil {
			return nil, fmt.Errorf("%s engine: %w", e, err)
		}
		s.recorder.RecordInspection(string(e), report.Duration)
		result.Reports = append(result.Reports, *report)
	}
	result.Consistent = consistent(result.Reports)

	s.logger.Debug("Inspection complete",
		zap.String("id", result.ID.String()),
		zap.String("engine", string(engine)),
		zap.Int("activations", activations),
		zap.Bool("consistent", result.Consistent))

	return result, nil
}

// runGo drives the native bootstrapper
func (s *Service) runGo(ctx context.Context, markup string, activations int) (*Report, error) {
	start := time.Now()

	doc, err := dom.Load(markup)
	if err != nil {
		return nil, err
	}
	win := dom.NewWindow(s.logger)
	boot := page.New(win, page.WithObserver(recorderObserver{rec: s.recorder, engine: EngineGo}))
	boot.Install(doc)
	if err := doc.FireContentLoaded(); err != nil {
		return nil, err
	}

	_, found := doc.Find(page.HookSelector)
	clicks, err := activate(ctx, doc, activations)
	if err != nil {
		return nil, err
	}

	return &Report{
		Engine:      EngineGo,
		State:       boot.State().String(),
		HookFound:   found,
		Listeners:   doc.ListenerCount(page.EventClick),
		Console:     win.Console(),
		Alerts:      win.Alerts(),
		Activations: clicks,
		Duration:    time.Since(start),
	}, nil
}

// runScript drives the embedded JavaScript glue in a pooled sandbox
func (s *Service) runScript(ctx context.Context, markup string, activations int) (*Report, error) {
	start := time.Now()

	doc, err := dom.Load(markup)
	if err != nil {
		return nil, err
	}

	rt, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	// Release resets the VM, which detaches the listeners. Keep it until
	// every click has been dispatched.
	defer func() {
		if err := s.pool.Release(rt); err != nil {
			s.logger.Warn("Sandbox release failed", zap.Error(err))
		}
	}()

	win := dom.NewWindow(s.logger)
	if _, err := rt.Execute(ctx, s.script, doc, win); err != nil {
		return nil, err
	}
	if err := doc.FireContentLoaded(); err != nil {
		return nil, err
	}

	hook, found := doc.Find(page.HookSelector)
	state := scriptState(win.Console(), hook, found)
	s.recorder.RecordBootstrap(string(EngineScript), state.String())

	clicks, err := activate(ctx, doc, activations)
	if err != nil {
		return nil, err
	}

	alerts := win.Alerts()
	for range alerts {
		s.recorder.RecordActivation(string(EngineScript))
	}

	report := &Report{
		Engine:      EngineScript,
		State:       state.String(),
		HookFound:   found,
		Listeners:   doc.ListenerCount(page.EventClick),
		Console:     win.Console(),
		Alerts:      alerts,
		Activations: clicks,
	}
	for _, e := range rt.Errors() {
		report.Errors = append(report.Errors, e.Error())
	}
	report.Duration = time.Since(start)
	return report, nil
}

// scriptState infers the lifecycle state the script reached from what it
// left behind in the document
func scriptState(console []string, hook *dom.Element, found bool) page.State {
	ran := false
	for _, line := range console {
		if line == page.LoadedMessage {
			ran = true
			break
		}
	}
	switch {
	case !ran:
		return page.Unattached
	case found && hook.Listeners(page.EventClick) > 0:
		return page.Attached
	default:
		return page.Skipped
	}
}

// activate clicks the first hook element n times and returns how many clicks
// reached it
func activate(ctx context.Context, doc *dom.Document, n int) (int, error) {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, ok := doc.ClickSelector(page.HookSelector); !ok {
			return i, nil
		}
	}
	return n, nil
}

// consistent reports whether every engine observed the same page
func consistent(reports []Report) bool {
	first := reports[0]
	for _, r := range reports[1:] {
		if r.State != first.State ||
			r.Listeners != first.Listeners ||
			!reflect.DeepEqual(r.Console, first.Console) ||
			!reflect.DeepEqual(r.Alerts, first.Alerts) {
			return false
		}
	}
	return true
}

// PoolStats exposes the sandbox pool state
func (s *Service) PoolStats() sandbox.PoolStats {
	return s.pool.Stats()
}

// Close releases the sandbox pool
func (s *Service) Close() error {
	return s.pool.Close()
}
