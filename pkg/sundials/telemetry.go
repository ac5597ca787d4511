package sundials

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/sunml/sundials-go"

// Telemetry holds the tracer and instruments a session reports through.
type Telemetry struct {
	tracer    trace.Tracer
	callbacks metric.Int64Counter
	calls     metric.Int64Counter
}

// NewTelemetry builds instruments from the given providers. Nil providers
// fall back to the otel globals. Instrument creation errors leave the
// corresponding instrument as a no-op.
func NewTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *Telemetry {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)
	t := &Telemetry{tracer: tp.Tracer(instrumentationName)}

	var err error
	t.callbacks, err = meter.Int64Counter(
		"sundials.callback.invocations",
		metric.WithDescription("Callbacks invoked by the native solver, by kind and status"),
	)
	if err != nil {
		otel.Handle(err)
	}
	t.calls, err = meter.Int64Counter(
		"sundials.native.calls",
		metric.WithDescription("Native solver entry points called, by call and result"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return t
}

// Start opens a span for a native entry point.
func (t *Telemetry) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func (t *Telemetry) End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *Telemetry) callback(ctx context.Context, family string, kind CallbackKind, st Status) {
	if t.callbacks == nil {
		return
	}
	t.callbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("family", family),
		attribute.String("kind", kind.String()),
		attribute.String("status", st.String()),
	))
}

func (t *Telemetry) nativeCall(ctx context.Context, call string, code int) {
	if t.calls == nil {
		return
	}
	result := "ok"
	if code < 0 {
		result = "error"
	}
	t.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("call", call),
		attribute.String("result", result),
		attribute.Int("code", code),
	))
}
