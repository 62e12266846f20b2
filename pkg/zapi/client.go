// Package zapi is the REST client for the Z-API WhatsApp messaging gateway.
package zapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Metrics receives outbound request outcomes for instrumentation.
// Implementations must be safe for concurrent use.
type Metrics interface {
	GatewayRequest(endpoint, outcome string)
}

// noopMetrics is used when no metrics sink is configured.
type noopMetrics struct{}

func (noopMetrics) GatewayRequest(string, string) {}

// Options configures the Z-API client.
type Options struct {
	BaseURL     string        // instance base URL, e.g. https://api.z-api.io/instances/ID/token/TOKEN
	ClientToken string        // account security token, sent as Client-Token header
	Timeout     time.Duration // per-request timeout (default: 30s)
	LogRequests bool          // log outgoing request bodies at debug level
	Metrics     Metrics       // optional request outcome sink
}

// Client sends messages through Z-API. Failures are logged and reported
// through the return values; the client never panics and never raises past
// its boundary, because senders only ever learn outcomes through reply
// messages.
type Client struct {
	options    Options
	httpClient *http.Client
}

// NewClient creates a Z-API client.
func NewClient(options Options) *Client {
	if options.Timeout == 0 {
		options.Timeout = 30 * time.Second
	}
	if options.Metrics == nil {
		options.Metrics = noopMetrics{}
	}
	return &Client{
		options:    options,
		httpClient: &http.Client{Timeout: options.Timeout},
	}
}

// SendMessage sends a text message, reporting success. Optional delays,
// message editing and reply referencing are carried in opts.
func (c *Client) SendMessage(ctx context.Context, phone, message string, opts SendOptions) bool {
	log.Info().Str("phone", phone).Msg("Sending message via Z-API")

	req := SendMessageRequest{
		Phone:         phone,
		Message:       message,
		DelayMessage:  opts.DelayMessage,
		DelayTyping:   opts.DelayTyping,
		EditMessageID: opts.EditMessageID,
		MessageID:     opts.ReferenceID,
	}

	status, _, err := c.post(ctx, "/send-text", req)
	if err != nil {
		log.Error().Err(err).Str("phone", phone).Msg("Error sending message via Z-API")
		return false
	}
	if status < 200 || status >= 300 {
		log.Warn().Int("status", status).Str("phone", phone).Msg("Failed to send message via Z-API")
		return false
	}
	return true
}

// ForwardMessage forwards an existing message to phone and returns the id of
// the forwarded message, or "" on failure.
func (c *Client) ForwardMessage(ctx context.Context, phone, messageID, messagePhone string) string {
	log.Info().Str("phone", phone).Str("messageId", messageID).Msg("Forwarding message via Z-API")

	if strings.TrimSpace(phone) == "" || strings.TrimSpace(messageID) == "" || strings.TrimSpace(messagePhone) == "" {
		log.Warn().Msg("Cannot forward message: phone, message id and sender phone are all required")
		return ""
	}

	req := ForwardMessageRequest{
		Phone:        phone,
		MessageID:    messageID,
		MessagePhone: messagePhone,
	}

	status, body, err := c.post(ctx, "/forward-message", req)
	if err != nil {
		log.Error().Err(err).Str("phone", phone).Msg("Error forwarding message via Z-API")
		return ""
	}
	if status < 200 || status >= 300 {
		log.Warn().Int("status", status).Str("phone", phone).Msg("Failed to forward message via Z-API")
		return ""
	}

	var resp forwardMessageResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.MessageID == "" {
		log.Warn().Str("phone", phone).Msg("Forward response does not contain a message id")
		return ""
	}
	return resp.MessageID
}

// ReadMessage marks a message as read. Best effort; failures are only logged.
func (c *Client) ReadMessage(ctx context.Context, phone, messageID string) {
	req := ReadMessageRequest{
		Phone:     phone,
		MessageID: messageID,
	}

	status, _, err := c.post(ctx, "/read-message", req)
	if err != nil {
		log.Error().Err(err).Str("phone", phone).Msg("Error marking message as read via Z-API")
		return
	}
	if status < 200 || status >= 300 {
		log.Warn().Int("status", status).Str("phone", phone).Msg("Failed to mark message as read via Z-API")
	}
}

// post sends a JSON POST to the given Z-API path and returns the status code
// and response body.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	if c.options.LogRequests {
		log.Debug().
			Str("path", path).
			RawJSON("body", data).
			Msg("Z-API request")
	}

	url := strings.TrimRight(c.options.BaseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.options.ClientToken != "" {
		httpReq.Header.Set("Client-Token", c.options.ClientToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.options.Metrics.GatewayRequest(path, "error")
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	outcome := "ok"
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "failed"
	}
	c.options.Metrics.GatewayRequest(path, outcome)

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, body.Bytes(), nil
}
