package tracing

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/shared/id"
)

// Propagation headers
const (
	TraceHeader = "X-Trace-ID"
	SpanHeader  = "X-Span-ID"
)

const spanBuffer = 1000

// TraceID represents a unique trace identifier
type TraceID string

// SpanID represents a unique span identifier
type SpanID string

// Span represents a single operation in a trace
type Span struct {
	TraceID  TraceID
	SpanID   SpanID
	ParentID SpanID
	Name     string
	Start    time.Time
	Duration time.Duration
	Tags     map[string]string
	Err      error
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	if s == nil {
		return
	}
	s.Tags[key] = value
}

// SetInt adds a numeric tag to the span
func (s *Span) SetInt(key string, value int) {
	s.SetTag(key, strconv.Itoa(value))
}

// SetError records the error that ended the span
func (s *Span) SetError(err error) {
	if s == nil {
		return
	}
	s.Err = err
}

// Tracer collects finished spans and writes them to the log off the
// request path. A nil Tracer records nothing.
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
	done    chan struct{}
	once    sync.Once
}

// New creates a tracer and starts its collector
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger.Named("trace"),
		spans:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}
	go t.collect()
	return t
}

// StartSpan opens a span, continuing the trace carried by ctx if any
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	if t == nil {
		return nil, ctx
	}

	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.NewRequestID())
	}

	span := &Span{
		TraceID:  traceID,
		SpanID:   SpanID(id.NewRequestID()),
		ParentID: GetSpanID(ctx),
		Name:     name,
		Start:    time.Now(),
		Tags:     make(map[string]string),
	}

	return span, WithTrace(ctx, traceID, span.SpanID)
}

// Finish closes the span and hands it to the collector. Spans finished
// after Close, or while the buffer is full, are dropped.
func (t *Tracer) Finish(span *Span) {
	if t == nil || span == nil {
		return
	}
	span.Duration = time.Since(span.Start)

	select {
	case <-t.done:
		return
	default:
	}

	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span", span.Name),
		)
	}
}

// Close stops the collector after draining buffered spans
func (t *Tracer) Close() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.done) })
}

func (t *Tracer) collect() {
	for {
		select {
		case span := <-t.spans:
			t.write(span)
		case <-t.done:
			for {
				select {
				case span := <-t.spans:
					t.write(span)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracer) write(span *Span) {
	fields := []zap.Field{
		zap.String("service", t.service),
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
	}
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	if span.Err != nil {
		t.logger.Warn("span failed", append(fields, zap.Error(span.Err))...)
		return
	}
	t.logger.Debug("span completed", fields...)
}

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// WithTrace returns ctx carrying the given trace and span
func WithTrace(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	return ctx
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	return traceID
}

// GetSpanID retrieves the span ID from context
func GetSpanID(ctx context.Context) SpanID {
	spanID, _ := ctx.Value(spanIDKey).(SpanID)
	return spanID
}

// Inject writes the trace context of ctx into outbound headers
func Inject(ctx context.Context, headers map[string]string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		headers[TraceHeader] = string(traceID)
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		headers[SpanHeader] = string(spanID)
	}
}
