package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()
	assert.NotEqual(t, gen.Generate(), gen.Generate())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestTypedIDs(t *testing.T) {
	ids := map[string]string{
		RequestPrefix:    NewRequestID().String(),
		SpanPrefix:       NewSpanID().String(),
		InspectionPrefix: NewInspectionID().String(),
	}

	for prefix, s := range ids {
		t.Run(prefix, func(t *testing.T) {
			parts := strings.Split(s, "_")
			require.Len(t, parts, 2)
			assert.Equal(t, prefix, parts[0])
			assert.Len(t, parts[1], 26)
			assert.True(t, IsValid(s))
		})
	}
}

func TestIsValid(t *testing.T) {
	invalid := []string{
		"",
		"invalid",
		"req_1234567890",
		"zzzzzzzzzzzzzzzzzzzzzzzzzzz",
	}
	for _, s := range invalid {
		assert.False(t, IsValid(s), s)
	}
	assert.True(t, IsValid(NewGenerator().GenerateString()))
}

func TestParseStripsPrefix(t *testing.T) {
	before := time.Now()
	s := NewInspectionID().String()
	after := time.Now()

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(s, InspectionPrefix+"_"), parsed.String())

	// ULID timestamps have millisecond precision
	assert.GreaterOrEqual(t, int64(parsed.Time()), before.UnixMilli())
	assert.LessOrEqual(t, int64(parsed.Time()), after.UnixMilli())

	_, err = Parse("insp_not-a-ulid")
	assert.Error(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const perGoroutine = 50

	var wg sync.WaitGroup
	out := make(chan string, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				out <- gen.GenerateWithPrefix(RequestPrefix)
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[string]bool)
	for s := range out {
		assert.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestDefaultGenerator(t *testing.T) {
	assert.Same(t, Default(), Default())
}
