package tool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool is a configurable tool for dispatch tests.
type fakeTool struct {
	name            string
	validationError string
	executeFn       func(req Request) Response
	asyncFn         func(req Request) <-chan Response
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake tool" }

func (f *fakeTool) ValidateParameters(req Request) string {
	return f.validationError
}

func (f *fakeTool) Execute(req Request) Response {
	if f.executeFn != nil {
		return f.executeFn(req)
	}
	return Completed(f.name, nil, req.StringParam("requestId", ""))
}

func (f *fakeTool) ExecuteAsync(req Request) <-chan Response {
	if f.asyncFn != nil {
		return f.asyncFn(req)
	}
	return Respond(f.Execute(req))
}

func receive(t *testing.T, ch <-chan Response) Response {
	t.Helper()
	select {
	case resp := <-ch:
		return resp
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response")
		return Response{}
	}
}

func TestServiceExecuteAsync(t *testing.T) {
	t.Run("unsupported tool is rejected", func(t *testing.T) {
		service := NewService(NewRegistry())

		resp := receive(t, service.ExecuteAsync(Request{ToolName: "missing"}))

		assert.Equal(t, StatusRejected, resp.Status)
		assert.Equal(t, "Tool 'missing' is not supported", resp.ErrorMessage)
		assert.Equal(t, "missing", resp.ToolName)
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("validation failure blocks execution", func(t *testing.T) {
		executed := false
		registry := NewRegistry()
		registry.Register(&fakeTool{
			name:            "checked",
			validationError: "Phone number is required",
			executeFn: func(req Request) Response {
				executed = true
				return Completed("checked", nil, "")
			},
		})
		service := NewService(registry)

		resp := receive(t, service.ExecuteAsync(Request{ToolName: "checked"}))

		assert.Equal(t, StatusRejected, resp.Status)
		assert.Equal(t, "Phone number is required", resp.ErrorMessage)
		assert.False(t, executed)
	})

	t.Run("panic becomes failed response", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&fakeTool{
			name: "exploding",
			asyncFn: func(req Request) <-chan Response {
				panic("boom")
			},
		})
		service := NewService(registry)

		resp := receive(t, service.ExecuteAsync(Request{ToolName: "exploding"}))

		assert.Equal(t, StatusFailed, resp.Status)
		assert.Equal(t, "Error executing tool: boom", resp.ErrorMessage)
	})

	t.Run("request id is propagated to the tool", func(t *testing.T) {
		var seen string
		registry := NewRegistry()
		registry.Register(&fakeTool{
			name: "echo",
			executeFn: func(req Request) Response {
				seen = req.StringParam("requestId", "")
				return Completed("echo", nil, seen)
			},
		})
		service := NewService(registry)

		resp := receive(t, service.ExecuteAsync(Request{ToolName: "echo"}))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, resp.RequestID)
		assert.Equal(t, StatusCompleted, resp.Status)
	})
}

func TestServiceIsToolSupported(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeTool{name: "present"})
	service := NewService(registry)

	assert.True(t, service.IsToolSupported("present"))
	assert.False(t, service.IsToolSupported("absent"))
}
