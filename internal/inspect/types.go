package inspect

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GriffinCanCode/pagehook/internal/page"
	"github.com/GriffinCanCode/pagehook/internal/sandbox"
	"github.com/GriffinCanCode/pagehook/internal/shared/id"
)

var (
	ErrInvalidActivations = errors.New("activations out of range")
	ErrUnknownEngine      = errors.New("unknown engine")
)

// Engine selects which rendition of the page glue runs
type Engine string

const (
	EngineGo     Engine = "go"
	EngineScript Engine = "script"
	EngineBoth   Engine = "both"
)

// ParseEngine maps a name to an Engine. Empty means EngineBoth.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case "":
		return EngineBoth, nil
	case EngineGo, EngineScript, EngineBoth:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

func (e Engine) expand() []Engine {
	if e == EngineBoth {
		return []Engine{EngineGo, EngineScript}
	}
	return []Engine{e}
}

// Request describes one inspection
type Request struct {
	HTML        string `json:"html"`
	Activations *int   `json:"activations,omitempty"` // nil means one
	Engine      string `json:"engine,omitempty"`
	Trusted     bool   `json:"trusted,omitempty"` // echo the markup unsanitized
}

// Report is what a visitor would have observed under one engine
type Report struct {
	Engine      Engine        `json:"engine"`
	State       string        `json:"state"`
	HookFound   bool          `json:"hook_found"`
	Listeners   int           `json:"listeners"` // click listeners on any element
	Console     []string      `json:"console"`
	Alerts      []string      `json:"alerts"`
	Activations int           `json:"activations"`
	Errors      []string      `json:"errors,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Result collects reports for every engine that ran
type Result struct {
	ID         id.InspectionID `json:"id"`
	Reports    []Report        `json:"reports"`
	Consistent bool            `json:"consistent"`
	Markup     string          `json:"markup"` // sanitized unless the request was trusted
}

// Recorder receives inspection metrics
type Recorder interface {
	RecordBootstrap(engine string, state string)
	RecordActivation(engine string)
	RecordInspection(engine string, duration time.Duration)
}

// Config configures the Service
type Config struct {
	MaxActivations int
	PoolSize       int
	Sandbox        sandbox.Config
}

// DefaultConfig returns the default inspection configuration
func DefaultConfig() Config {
	return Config{
		MaxActivations: 100,
		PoolSize:       4,
		Sandbox:        sandbox.DefaultConfig(),
	}
}

// recorderObserver forwards bootstrapper events to a Recorder
type recorderObserver struct {
	rec    Recorder
	engine Engine
}

func (o recorderObserver) Ran(state page.State) {
	o.rec.RecordBootstrap(string(o.engine), state.String())
}

func (o recorderObserver) Activated() {
	o.rec.RecordActivation(string(o.engine))
}

type nopRecorder struct{}

func (nopRecorder) RecordBootstrap(string, string)         {}
func (nopRecorder) RecordActivation(string)                {}
func (nopRecorder) RecordInspection(string, time.Duration) {}
