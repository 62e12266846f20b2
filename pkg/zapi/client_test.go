package zapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Path        string
	ClientToken string
	Body        map[string]interface{}
}

func newTestServer(t *testing.T, status int, responseBody string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests = append(requests, recordedRequest{
			Path:        r.URL.Path,
			ClientToken: r.Header.Get("Client-Token"),
			Body:        body,
		})
		w.WriteHeader(status)
		w.Write([]byte(responseBody))
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func TestSendMessage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server, requests := newTestServer(t, http.StatusOK, `{"messageId":"m-1"}`)
		client := NewClient(Options{BaseURL: server.URL, ClientToken: "secret"})

		ok := client.SendMessage(context.Background(), "5544999999999", "hello", SendOptions{ReferenceID: "ref-1"})

		require.True(t, ok)
		require.Len(t, *requests, 1)
		req := (*requests)[0]
		assert.Equal(t, "/send-text", req.Path)
		assert.Equal(t, "secret", req.ClientToken)
		assert.Equal(t, "5544999999999", req.Body["phone"])
		assert.Equal(t, "hello", req.Body["message"])
		assert.Equal(t, "ref-1", req.Body["messageId"])
	})

	t.Run("gateway error reports failure", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusBadRequest, `{}`)
		client := NewClient(Options{BaseURL: server.URL})

		assert.False(t, client.SendMessage(context.Background(), "5544999999999", "hello", SendOptions{}))
	})

	t.Run("unreachable gateway reports failure", func(t *testing.T) {
		client := NewClient(Options{BaseURL: "http://127.0.0.1:1"})

		assert.False(t, client.SendMessage(context.Background(), "5544999999999", "hello", SendOptions{}))
	})
}

func TestForwardMessage(t *testing.T) {
	t.Run("returns forwarded message id", func(t *testing.T) {
		server, requests := newTestServer(t, http.StatusOK, `{"messageId":"fwd-42"}`)
		client := NewClient(Options{BaseURL: server.URL})

		id := client.ForwardMessage(context.Background(), "5544000000000", "m-7", "5544999999999")

		assert.Equal(t, "fwd-42", id)
		require.Len(t, *requests, 1)
		req := (*requests)[0]
		assert.Equal(t, "/forward-message", req.Path)
		assert.Equal(t, "m-7", req.Body["messageId"])
		assert.Equal(t, "5544999999999", req.Body["messagePhone"])
	})

	t.Run("blank inputs are rejected without a request", func(t *testing.T) {
		server, requests := newTestServer(t, http.StatusOK, `{"messageId":"fwd-42"}`)
		client := NewClient(Options{BaseURL: server.URL})

		assert.Empty(t, client.ForwardMessage(context.Background(), "", "m-7", "5544999999999"))
		assert.Empty(t, client.ForwardMessage(context.Background(), "5544000000000", "", "5544999999999"))
		assert.Empty(t, client.ForwardMessage(context.Background(), "5544000000000", "m-7", ""))
		assert.Empty(t, *requests)
	})

	t.Run("missing id in response reports failure", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusOK, `{}`)
		client := NewClient(Options{BaseURL: server.URL})

		assert.Empty(t, client.ForwardMessage(context.Background(), "5544000000000", "m-7", "5544999999999"))
	})
}

func TestReadMessage(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{}`)
	client := NewClient(Options{BaseURL: server.URL})

	client.ReadMessage(context.Background(), "5544999999999", "m-3")

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/read-message", req.Path)
	assert.Equal(t, "m-3", req.Body["messageId"])
}

func TestBaseURLTrailingSlash(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{}`)
	client := NewClient(Options{BaseURL: server.URL + "/"})

	client.SendMessage(context.Background(), "5544999999999", "hello", SendOptions{})

	require.Len(t, *requests, 1)
	assert.Equal(t, "/send-text", (*requests)[0].Path)
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (m *recordingMetrics) GatewayRequest(endpoint, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string][]string)
	}
	m.outcomes[endpoint] = append(m.outcomes[endpoint], outcome)
}

func TestClientReportsMetrics(t *testing.T) {
	t.Run("success outcome", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusOK, `{"messageId":"m-1"}`)
		sink := &recordingMetrics{}
		client := NewClient(Options{BaseURL: server.URL, Metrics: sink})

		require.True(t, client.SendMessage(context.Background(), "5544999999999", "hello", SendOptions{}))
		assert.Equal(t, []string{"ok"}, sink.outcomes["/send-text"])
	})

	t.Run("gateway rejection outcome", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusBadRequest, `{}`)
		sink := &recordingMetrics{}
		client := NewClient(Options{BaseURL: server.URL, Metrics: sink})

		client.SendMessage(context.Background(), "5544999999999", "hello", SendOptions{})
		assert.Equal(t, []string{"failed"}, sink.outcomes["/send-text"])
	})

	t.Run("transport error outcome", func(t *testing.T) {
		sink := &recordingMetrics{}
		client := NewClient(Options{BaseURL: "http://127.0.0.1:1", Metrics: sink})

		client.ReadMessage(context.Background(), "5544999999999", "msg-1")
		assert.Equal(t, []string{"error"}, sink.outcomes["/read-message"])
	})
}
