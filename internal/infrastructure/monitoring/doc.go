/*
Package monitoring provides Prometheus metrics for the page server.

# Overview

Metrics live on a private registry, so several collectors can coexist in
one process (tests build one per case). The collector tracks:

  - HTTP requests: count, latency, request and response size
  - page glue runs by engine and resulting state
  - add-student hook activations by engine
  - inspection latency per engine
  - idle runtimes in the sandbox pool
  - uptime, Go runtime and process stats

Metrics satisfies inspect.Recorder.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
