package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/pagehook/internal/assets"
	"github.com/GriffinCanCode/pagehook/internal/dom"
	"github.com/GriffinCanCode/pagehook/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/pagehook/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/pagehook/internal/inspect"
	"github.com/GriffinCanCode/pagehook/internal/sandbox"
)

// Route prefixes
const (
	StaticPath = "/static"
	WasmPath   = "/wasm"
)

// maxBodySize bounds an inspection request: the markup plus JSON framing
const maxBodySize = dom.MaxMarkupSize + 64*1024

// Inspector runs the page glue over submitted markup
type Inspector interface {
	Inspect(ctx context.Context, req inspect.Request) (*inspect.Result, error)
	PoolStats() sandbox.PoolStats
}

// PageSettings configures the rendered page
type PageSettings struct {
	Title   string
	Runtime string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	tmpl      *template.Template
	page      PageSettings
	inspector Inspector
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer
	logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	page PageSettings,
	inspector Inspector,
	metrics *monitoring.Metrics,
	tracer *tracing.Tracer,
	logger *zap.Logger,
) (*Handlers, error) {
	tmpl, err := assets.Templates()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		tmpl:      tmpl,
		page:      page,
		inspector: inspector,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}, nil
}

// Index renders the student records page
func (h *Handlers) Index(c *gin.Context) {
	var buf bytes.Buffer
	err := h.tmpl.ExecuteTemplate(&buf, assets.IndexTemplate, assets.PageData{
		Title:      h.page.Title,
		Runtime:    h.page.Runtime,
		StaticPath: StaticPath,
		WasmPath:   WasmPath,
	})
	if err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Static serves embedded assets
func (h *Handlers) Static(c *gin.Context) {
	name := c.Param("filepath")

	data, err := assets.ReadStatic(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found", "path": name})
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, assets.ContentType(name, data), data)
}

// Health reports server and sandbox pool status
func (h *Handlers) Health(c *gin.Context) {
	stats := h.inspector.PoolStats()
	h.metrics.SetSandboxAvailable(stats.Available)

	status := "healthy"
	code := http.StatusOK
	if stats.Closed {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"service": "pagehook",
		"runtime": h.page.Runtime,
		"sandbox": stats,
		"metrics": h.metrics.Snapshot(),
	})
}

// Inspect runs the page glue over submitted markup
func (h *Handlers) Inspect(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req inspect.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	span, ctx := h.tracer.StartSpan(c.Request.Context(), "inspect")
	span.SetTag("engine", req.Engine)
	defer func() {
		span.Finish()
		h.tracer.Submit(span)
	}()

	result, err := h.inspector.Inspect(ctx, req)
	h.metrics.SetSandboxAvailable(h.inspector.PoolStats().Available)
	if err != nil {
		code := statusFor(err)
		span.SetStatus(code)
		span.SetError(err)
		if code >= http.StatusInternalServerError {
			h.logger.Error("Inspection failed", zap.Error(err))
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}

	span.SetTag("inspection_id", result.ID.String())
	c.JSON(http.StatusOK, result)
}

// statusFor maps inspection errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, inspect.ErrInvalidActivations),
		errors.Is(err, inspect.ErrUnknownEngine),
		errors.Is(err, dom.ErrEmptyMarkup):
		return http.StatusBadRequest
	case errors.Is(err, dom.ErrMarkupTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sandbox.ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
