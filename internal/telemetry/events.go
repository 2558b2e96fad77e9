package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const domainTracer = "cardfeed"

// StartInteraction opens a span for a like, comment or share
func StartInteraction(ctx context.Context, action, postID, userID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("interaction.action", action),
		attribute.String("post.id", postID),
	}
	if userID != "" {
		attrs = append(attrs, attribute.String("user.id", userID))
	}
	return otel.Tracer(domainTracer).Start(ctx, "interaction."+action, trace.WithAttributes(attrs...))
}

// StartBroadcast opens a span covering one announcement fan-out
func StartBroadcast(ctx context.Context, targetMode, adminID string) (context.Context, trace.Span) {
	return otel.Tracer(domainTracer).Start(ctx, "notifications.broadcast",
		trace.WithAttributes(
			attribute.String("broadcast.target_mode", targetMode),
			attribute.String("admin.id", adminID),
		),
	)
}

// End records err on span, if any, and ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
