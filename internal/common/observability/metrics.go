package observability

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	tracerProvider     *sdktrace.TracerProvider
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	tracer             trace.Tracer
	predictionCounter  otelmetric.Int64Counter
	predictionDuration otelmetric.Float64Histogram
}

type Option func(*options)

type options struct {
	spanProcessors []sdktrace.SpanProcessor
}

// WithSpanProcessor attaches sp to the tracer provider. Without one, spans are
// sampled and ended but not exported.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) {
		o.spanProcessors = append(o.spanProcessors, sp)
	}
}

func newTracerProvider(opts []Option) *sdktrace.TracerProvider {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}
	for _, sp := range cfg.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}
	return sdktrace.NewTracerProvider(tpOpts...)
}

// New installs an SDK tracer provider as the global one and wires an otel
// MeterProvider to the default Prometheus registry, so the otel instruments
// are served from the same /metrics endpoint. On exporter failure tracing
// still works and metrics record nothing.
func New(serviceName string, opts ...Option) (*Observability, error) {
	tp := newTracerProvider(opts)
	otel.SetTracerProvider(tp)
	o := &Observability{tracerProvider: tp, tracer: tp.Tracer(serviceName)}

	exporter, err := prometheus.New()
	if err != nil {
		return o, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	predictionCounter, _ := meter.Int64Counter(
		"predictions.processed",
		otelmetric.WithDescription("Number of predictions processed"),
	)

	predictionDuration, _ := meter.Float64Histogram(
		"predictions.duration",
		otelmetric.WithDescription("Prediction processing duration"),
		otelmetric.WithUnit("ms"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.predictionCounter = predictionCounter
	o.predictionDuration = predictionDuration
	return o, nil
}

// NewNoop returns an Observability that records no metrics. Spans go to the
// global provider unless span processors are given, in which case a private
// tracer provider feeds them.
func NewNoop(opts ...Option) *Observability {
	if len(opts) == 0 {
		return &Observability{tracer: otel.Tracer("noop")}
	}
	tp := newTracerProvider(opts)
	return &Observability{tracerProvider: tp, tracer: tp.Tracer("noop")}
}

// StartSpan opens a span on the tracer set up by New or NewNoop.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return otel.Tracer("loan-approval").Start(ctx, name, trace.WithAttributes(attrs...))
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordPrediction(ctx context.Context, status string) {
	if o != nil && o.predictionCounter != nil {
		o.predictionCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordPredictionDuration(ctx context.Context, duration time.Duration, status string) {
	if o != nil && o.predictionDuration != nil {
		o.predictionDuration.Record(ctx, float64(duration.Microseconds())/1000, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

// Shutdown flushes and stops both providers.
func (o *Observability) Shutdown() error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return stderrors.Join(errs...)
}
