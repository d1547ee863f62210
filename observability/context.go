package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OperationContext tracks one traced file operation: a validation run or a
// writer session.
type OperationContext struct {
	Component     string
	OperationName string
	Path          string
	StartTime     time.Time
}

// NewOperationContext creates a new operation context.
func NewOperationContext(component, operationName, path string) *OperationContext {
	return &OperationContext{
		Component:     component,
		OperationName: operationName,
		Path:          path,
		StartTime:     time.Now(),
	}
}

type operationContextKey struct{}

// WithOperationContext stores an OperationContext in the context.
func WithOperationContext(ctx context.Context, oc *OperationContext) context.Context {
	return context.WithValue(ctx, operationContextKey{}, oc)
}

// OperationContextFromContext retrieves the OperationContext from context, or nil.
func OperationContextFromContext(ctx context.Context) *OperationContext {
	if oc, ok := ctx.Value(operationContextKey{}).(*OperationContext); ok {
		return oc
	}
	return nil
}

// StartSpanForOperation starts a span tagged with the operation fields and
// stores the operation in the returned context.
func (oc *OperationContext) StartSpanForOperation(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrComponent, oc.Component),
		attribute.String(AttrOperationName, oc.OperationName),
	)
	if oc.Path != "" {
		span.SetAttributes(attribute.String(AttrFilePath, oc.Path))
	}
	return WithOperationContext(ctx, oc), span
}

// EndOperation records the outcome on span and ends it.
func (oc *OperationContext) EndOperation(span trace.Span, status string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, oc.Duration().Milliseconds()),
	)
	span.End()
}

// Duration returns the elapsed time since operation start.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}
