package session

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session-store")

// TracingStore wraps a Store with tracing
type TracingStore struct {
	inner   Store
	backend string
}

// NewTracingStore creates a tracing decorator; backend names the span attribute
func NewTracingStore(inner Store, backend string) *TracingStore {
	return &TracingStore{inner: inner, backend: backend}
}

func (s *TracingStore) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "session."+op,
		trace.WithAttributes(attribute.String("session.backend", s.backend)),
	)
}

func record(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Load with tracing
func (s *TracingStore) Load(ctx context.Context) (Session, error) {
	ctx, span := s.start(ctx, "Load")
	defer span.End()

	sess, err := s.inner.Load(ctx)
	record(span, err)
	span.SetAttributes(attribute.Bool("session.logged_in", sess.LoggedIn()))
	return sess, err
}

// Save with tracing
func (s *TracingStore) Save(ctx context.Context, sess Session) error {
	ctx, span := s.start(ctx, "Save")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", sess.UserID))
	err := s.inner.Save(ctx, sess)
	record(span, err)
	return err
}

// Clear with tracing
func (s *TracingStore) Clear(ctx context.Context) error {
	ctx, span := s.start(ctx, "Clear")
	defer span.End()

	err := s.inner.Clear(ctx)
	record(span, err)
	return err
}
