package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// MaxMarkupSize limits markup input to 10MB to prevent memory exhaustion
const MaxMarkupSize = 10 * 1024 * 1024

var (
	ErrEmptyMarkup    = errors.New("markup is empty")
	ErrMarkupTooLarge = fmt.Errorf("markup exceeds maximum size of %d bytes", MaxMarkupSize)
)

// ValidateMarkup checks markup size
func ValidateMarkup(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyMarkup
	}
	if len(data) > MaxMarkupSize {
		return ErrMarkupTooLarge
	}
	return nil
}

// DetectCharset detects the charset of raw markup, defaulting to utf-8
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// Load parses markup held in a Go string. Valid UTF-8 is parsed as is; only
// invalid input goes through charset detection.
func Load(markup string) (*Document, error) {
	if !utf8.ValidString(markup) {
		return LoadBytes([]byte(markup))
	}
	if err := ValidateMarkup([]byte(markup)); err != nil {
		return nil, err
	}
	return parse(strings.NewReader(markup))
}

// LoadBytes parses raw markup with charset detection
func LoadBytes(data []byte) (*Document, error) {
	if err := ValidateMarkup(data); err != nil {
		return nil, err
	}

	utf8Reader, err := charset.NewReader(bytes.NewReader(data), DetectCharset(data))
	if err != nil {
		// Fallback to direct parsing
		return parse(bytes.NewReader(data))
	}
	return parse(utf8Reader)
}

func parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	return newDocument(doc), nil
}
