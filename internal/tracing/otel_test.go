package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(-0.5).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(2).Description())
	assert.Equal(t,
		sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description(),
		samplerFor(0.25).Description())
}

func TestInitShutdown(t *testing.T) {
	require.NoError(t, Init(Config{SampleRatio: 1}))
	t.Cleanup(func() { Shutdown(context.Background()) })

	assert.Error(t, Init(Config{SampleRatio: 1}), "double init must be rejected")

	require.NoError(t, Shutdown(context.Background()))
	assert.NoError(t, Shutdown(context.Background()), "shutdown is idempotent")

	// A fresh init after shutdown is allowed.
	require.NoError(t, Init(Config{SampleRatio: 0.5}))
}
