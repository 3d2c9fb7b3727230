/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span. Trace and span ids are prefixed ULIDs
(req_..., span_...) and travel in the X-Trace-ID and X-Span-ID headers; an
inbound X-Trace-ID is continued rather than replaced. Finished spans are
buffered (1000) and logged by a collector goroutine with zap.

	tracer := tracing.New("pagehook", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "inspect")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
