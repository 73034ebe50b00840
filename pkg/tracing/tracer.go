// Package tracing wires OpenTelemetry spans around plugin calls.
package tracing

import (
	"context"

	"github.com/example/nodeplugin/proto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/example/nodeplugin"

// Common attribute keys.
const (
	PluginNameKey  = "nodeplugin.plugin.name"
	RunIDKey       = "nodeplugin.run.id"
	WorkflowIDKey  = "nodeplugin.workflow.id"
	ExecutionIDKey = "nodeplugin.execution.id"
	NodeIDKey      = "nodeplugin.node.id"
	RetryCountKey  = "nodeplugin.retry.count"
	StatusKey      = "nodeplugin.status"
)

// NewTracerProvider installs a global provider exporting over OTLP/HTTP. The
// exporter is configured from the standard OTEL_EXPORTER_OTLP_* variables.
// Callers own the returned provider and must Shutdown it.
func NewTracerProvider(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}))

	return tp, nil
}

// Tracer returns the module tracer from the global provider. Without a
// configured provider spans are no-ops.
//
// nolint:ireturn
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// nolint:ireturn,spancheck
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("error_occurred", trace.WithAttributes(
		attrs...,
	))
}

// RequestAttributes describes the workflow position of a call.
func RequestAttributes(rc *proto.RequestContext) []attribute.KeyValue {
	if rc == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(WorkflowIDKey, rc.WorkflowId),
		attribute.String(ExecutionIDKey, rc.ExecutionId),
		attribute.String(NodeIDKey, rc.NodeId),
		attribute.Int(RetryCountKey, int(rc.RetryCount)),
	}
}
