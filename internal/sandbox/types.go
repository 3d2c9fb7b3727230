package sandbox

import (
	"errors"
	"time"
)

var (
	ErrPoolClosed   = errors.New("sandbox pool is closed")
	ErrTimeout      = errors.New("sandbox acquisition timeout")
	ErrInterrupted  = errors.New("script interrupted")
	ErrRuntimeClose = errors.New("sandbox runtime is closed")
)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration // Per script or listener execution
	AcquireTimeout   time.Duration // Pool acquisition timeout
	MaxCallStackSize int           // goja call stack limit
	EnableConsole    bool          // Allow console.log/info/warn/error
	EnableDOM        bool          // Expose document/alert to scripts
}

// Result holds execution result
type Result struct {
	Value    interface{}   // Completion value of the script
	Console  []LogEntry    // Console output produced by the script itself
	Duration time.Duration // Execution time
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, info, warn, error
	Message string    // Log message
	Time    time.Time // Timestamp
}

// DefaultConfig returns the default sandbox configuration
func DefaultConfig() Config {
	return Config{
		Timeout:          5 * time.Second,
		AcquireTimeout:   5 * time.Second,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
		EnableDOM:        true,
	}
}
