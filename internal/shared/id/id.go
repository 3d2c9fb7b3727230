// Package id generates prefixed ULIDs.
//
// IDs are lexicographically sortable by creation time and carry a short type
// prefix so they read well in logs:
//
//	req_01HV3Y4Q8J6Y1M2T7W0Z5K9C3D   request / trace
//	span_01HV3Y4Q8J6Y1M2T7W0Z5K9C3E  span
//	insp_01HV3Y4Q8J6Y1M2T7W0Z5K9C3F  inspection
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies an HTTP request and its trace
type RequestID string

// SpanID identifies a span within a trace
type SpanID string

// InspectionID identifies one inspection run
type InspectionID string

const (
	RequestPrefix    = "req"
	SpanPrefix       = "span"
	InspectionPrefix = "insp"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewSpanID generates a new span ID
func NewSpanID() SpanID {
	return SpanID(Default().GenerateWithPrefix(SpanPrefix))
}

// NewInspectionID generates a new inspection ID
func NewInspectionID() InspectionID {
	return InspectionID(Default().GenerateWithPrefix(InspectionPrefix))
}

func (id RequestID) String() string    { return string(id) }
func (id SpanID) String() string       { return string(id) }
func (id InspectionID) String() string { return string(id) }

// IsValid checks if a string is a valid ULID, with or without a prefix
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse parses a ULID, stripping a type prefix if present
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.ParseStrict(s)
}
