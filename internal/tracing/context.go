// Package tracing carries correlation identifiers through contexts and
// exposes OpenTelemetry spans around message routing.
package tracing

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// TraceIDKey is the context key for the trace ID.
	TraceIDKey ContextKey = "trace_id"
	// RequestIDKey is the context key for the tool execution request ID.
	RequestIDKey ContextKey = "request_id"
	// ToolKey is the context key for the resolved tool name.
	ToolKey ContextKey = "tool"
	// MessageIDKey is the context key for the gateway message ID.
	MessageIDKey ContextKey = "message_id"
)

// TraceContext holds the correlation identifiers of one routed message.
type TraceContext struct {
	TraceID   string
	RequestID string
	Tool      string
	MessageID string
}

// NewTraceID generates a new trace ID.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithRequestID adds a tool execution request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithTool adds the resolved tool name to the context.
func WithTool(ctx context.Context, toolName string) context.Context {
	return context.WithValue(ctx, ToolKey, toolName)
}

// WithMessageID adds the gateway message ID to the context.
func WithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, MessageIDKey, messageID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetTool retrieves the tool name from the context.
func GetTool(ctx context.Context) string {
	if toolName, ok := ctx.Value(ToolKey).(string); ok {
		return toolName
	}
	return ""
}

// GetMessageID retrieves the gateway message ID from the context.
func GetMessageID(ctx context.Context) string {
	if messageID, ok := ctx.Value(MessageIDKey).(string); ok {
		return messageID
	}
	return ""
}

// FromContext extracts all correlation identifiers from the context.
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		TraceID:   GetTraceID(ctx),
		RequestID: GetRequestID(ctx),
		Tool:      GetTool(ctx),
		MessageID: GetMessageID(ctx),
	}
}

// NewContext creates a context carrying the given trace context.
func NewContext(ctx context.Context, tc *TraceContext) context.Context {
	if tc == nil {
		return ctx
	}
	if tc.TraceID != "" {
		ctx = WithTraceID(ctx, tc.TraceID)
	}
	if tc.RequestID != "" {
		ctx = WithRequestID(ctx, tc.RequestID)
	}
	if tc.Tool != "" {
		ctx = WithTool(ctx, tc.Tool)
	}
	if tc.MessageID != "" {
		ctx = WithMessageID(ctx, tc.MessageID)
	}
	return ctx
}
