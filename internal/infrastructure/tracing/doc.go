/*
Package tracing provides lightweight request tracing.

Every inbound request gets a span; upstream calls open child spans and
forward the trace context to the news and market APIs. Finished spans are
buffered and written to the log by a collector goroutine.

# Usage

	tracer := tracing.New("gateway", logger.Logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "upstream news_api")
	defer tracer.Finish(span)
	span.SetTag("path", "/v2/everything")

# Propagation

	X-Trace-ID: identifier of the whole request flow
	X-Span-ID:  identifier of the current operation
*/
package tracing
