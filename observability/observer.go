package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type frame struct {
	ctx  context.Context
	span trace.Span
}

// FactoryObserver traces and measures factory invocations. Each factory
// span is a child of the span of the factory that read it, so a trace shows
// the dependency tree in build order.
//
// It keeps per-build state; use one observer per dependency graph.
type FactoryObserver struct {
	base    context.Context
	tracer  trace.Tracer
	metrics *Metrics
	stack   []frame
}

// NewFactoryObserver creates an observer whose root spans are children of
// ctx. tracer and metrics may be nil to skip that signal.
func NewFactoryObserver(ctx context.Context, tracer trace.Tracer, metrics *Metrics) *FactoryObserver {
	return &FactoryObserver{base: ctx, tracer: tracer, metrics: metrics}
}

func (o *FactoryObserver) parent() context.Context {
	if n := len(o.stack); n > 0 {
		return o.stack[n-1].ctx
	}
	return o.base
}

// FactoryStarted opens a span for name.
func (o *FactoryObserver) FactoryStarted(name, requester string) {
	ctx := o.parent()
	span := trace.SpanFromContext(ctx)
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, SpanFactory+" "+name, trace.WithAttributes(
			attribute.String(AttrDependency, name),
			attribute.String(AttrRequester, requester),
		))
	}
	o.stack = append(o.stack, frame{ctx: ctx, span: span})
}

// FactoryFinished closes the span opened for name and records metrics.
func (o *FactoryObserver) FactoryFinished(name string, d time.Duration, err error) {
	n := len(o.stack)
	if n == 0 {
		return
	}
	f := o.stack[n-1]
	o.stack = o.stack[:n-1]

	status := "ok"
	if err != nil {
		status = "error"
	}
	if o.tracer != nil {
		if err != nil {
			f.span.RecordError(err)
			f.span.SetStatus(codes.Error, err.Error())
		}
		f.span.End()
	}
	if o.metrics != nil {
		o.metrics.RecordFactory(f.ctx, name, status, d)
	}
}
