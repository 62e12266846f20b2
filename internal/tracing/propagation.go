package tracing

import (
	"context"

	"github.com/rs/zerolog"
)

// PropagateToLogger adds the context's correlation identifiers to a zerolog
// logger.
func PropagateToLogger(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	tc := FromContext(ctx)

	if tc.TraceID != "" {
		logger = logger.With().Str("trace_id", tc.TraceID).Logger()
	}
	if tc.RequestID != "" {
		logger = logger.With().Str("request_id", tc.RequestID).Logger()
	}
	if tc.Tool != "" {
		logger = logger.With().Str("tool", tc.Tool).Logger()
	}
	if tc.MessageID != "" {
		logger = logger.With().Str("message_id", tc.MessageID).Logger()
	}

	return logger
}

// LoggerFromContext creates a logger carrying the context's correlation
// identifiers.
func LoggerFromContext(ctx context.Context, baseLogger zerolog.Logger) zerolog.Logger {
	return PropagateToLogger(ctx, baseLogger)
}

// CloneContext creates a fresh background context carrying the same
// correlation identifiers. Used when work outlives the inbound request.
func CloneContext(ctx context.Context) context.Context {
	return NewContext(context.Background(), FromContext(ctx))
}
