package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTool(ctx, "transcription")
	ctx = WithMessageID(ctx, "msg-1")

	assert.Equal(t, "trace-1", GetTraceID(ctx))
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "transcription", GetTool(ctx))
	assert.Equal(t, "msg-1", GetMessageID(ctx))
}

func TestGettersOnEmptyContext(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTool(ctx))
	assert.Empty(t, GetMessageID(ctx))
}

func TestFromContextAndNewContext(t *testing.T) {
	original := &TraceContext{
		TraceID:   NewTraceID(),
		RequestID: "req-1",
		Tool:      "csv-processing",
		MessageID: "msg-1",
	}

	ctx := NewContext(context.Background(), original)
	restored := FromContext(ctx)
	assert.Equal(t, original, restored)

	t.Run("nil trace context is a no-op", func(t *testing.T) {
		ctx := NewContext(context.Background(), nil)
		assert.Empty(t, GetTraceID(ctx))
	})
}

func TestCloneContext(t *testing.T) {
	type parentKey struct{}

	ctx := context.WithValue(context.Background(), parentKey{}, "parent-only")
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithTool(ctx, "forwarding")

	cloned := CloneContext(ctx)
	assert.Equal(t, "trace-1", GetTraceID(cloned))
	assert.Equal(t, "forwarding", GetTool(cloned))
	assert.Nil(t, cloned.Value(parentKey{}), "clone carries only correlation identifiers")
}

func TestLoggerFromContext(t *testing.T) {
	ctx := WithTool(WithTraceID(context.Background(), "trace-1"), "transcription")

	var buf bytes.Buffer
	logger := LoggerFromContext(ctx, zerolog.New(&buf))
	logger.Info().Msg("routing")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"trace_id":"trace-1"`)
	assert.Contains(t, out, `"tool":"transcription"`)
}
