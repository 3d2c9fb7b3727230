package tracing

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/pagehook/internal/shared/id"
)

// HTTPMiddleware creates Gin middleware that opens a span per request,
// continues inbound X-Trace-ID/X-Span-ID and echoes the ids back. Inbound ids
// that are not well-formed ULIDs are ignored.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithTrace(c.Request.Context(),
			TraceID(inboundID(c.GetHeader(TraceHeader))),
			SpanID(inboundID(c.GetHeader(SpanHeader))))

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceHeader, string(span.TraceID))
		c.Header(SpanHeader, string(span.SpanID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}

		span.Finish()
		tracer.Submit(span)
	}
}

func inboundID(header string) string {
	if header == "" || !id.IsValid(header) {
		return ""
	}
	return header
}
