package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/joshdias/zaprouter/internal/tracing"
	"github.com/joshdias/zaprouter/pkg/tool"
	"go.opentelemetry.io/otel/attribute"
)

// handleReceiveMessage accepts a gateway callback, classifies its content,
// resolves the sender's tool and dispatches the execution. The handler waits
// up to SyncWait for a terminal result; if the tool is still running after
// that, the request is answered with 202 Accepted and the outcome is logged
// when it eventually arrives.
func (s *Server) handleReceiveMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	startTime := time.Now()

	var msg ReceiveMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode message payload")
		s.metrics.MessageRejected("malformed_payload")
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !s.phones.IsPhoneAllowed(msg.Phone) {
		s.logger.Warn().Msg("Message from disallowed phone rejected")
		s.metrics.MessageRejected("phone_not_allowed")
		s.writeError(w, http.StatusForbidden, "Phone number is not allowed")
		return
	}

	content, ok := classify(msg)
	if !ok {
		s.logger.Warn().
			Str("phone", msg.Phone).
			Str("messageId", msg.MessageID).
			Msg("Message has no processable content")
		s.metrics.MessageRejected("no_content")
		s.writeError(w, http.StatusBadRequest, "Message has no processable content")
		return
	}

	toolName := s.phones.ToolForPhone(msg.Phone)

	ctx, span := tracing.StartSpan(r.Context(), "webhook", "message.route",
		attribute.String("content.type", content.Type),
		attribute.String("tool.name", toolName),
	)
	defer span.End()
	ctx = tracing.WithTool(tracing.WithMessageID(ctx, msg.MessageID), toolName)
	logger := tracing.LoggerFromContext(ctx, s.logger)

	logger.Info().
		Str("phone", msg.Phone).
		Str("contentType", content.Type).
		Msg("Routing message")
	s.metrics.MessageReceived(content.Type)

	req := tool.Request{
		ToolName:   toolName,
		Parameters: buildParameters(msg, content),
	}

	resultChan := s.service.ExecuteAsync(req)

	select {
	case resp, open := <-resultChan:
		if !open {
			logger.Error().Msg("Tool result channel closed without a response")
			s.writeError(w, http.StatusInternalServerError, "Tool produced no response")
			return
		}
		s.metrics.ToolExecution(toolName, string(resp.Status), time.Since(startTime))
		s.writeJSON(w, statusCodeFor(resp.Status), resp)

	case <-time.After(s.options.SyncWait):
		// The tool keeps running; its outcome is delivered out-of-band
		// through the gateway, so all that is left here is logging.
		logger.Info().
			Dur("waited", s.options.SyncWait).
			Msg("Tool still running, answering with accepted")
		s.metrics.ToolExecution(toolName, "timeout", time.Since(startTime))
		s.writeJSON(w, http.StatusAccepted, tool.Accepted(toolName, ""))

		go s.logLateResult(tracing.CloneContext(ctx), resultChan)
	}
}

// buildParameters flattens the classified message into the parameter bag
// handed to tools.
func buildParameters(msg ReceiveMessage, content classifiedContent) map[string]interface{} {
	params := map[string]interface{}{
		"phoneNumber": msg.Phone,
		"contentType": content.Type,
		"messageId":   msg.MessageID,
		"senderName":  msg.SenderName,
		"messageType": content.Type,
	}

	if content.Type == ContentTypeText {
		params["messageContent"] = content.Value
	} else {
		params["contentUrl"] = content.Value
	}

	return params
}

// statusCodeFor maps a terminal tool status to the HTTP response code.
func statusCodeFor(status tool.Status) int {
	switch status {
	case tool.StatusCompleted:
		return http.StatusOK
	case tool.StatusAccepted:
		return http.StatusAccepted
	case tool.StatusRejected:
		return http.StatusBadRequest
	case tool.StatusFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// logLateResult drains a tool result that arrived after the synchronous
// wait expired. The context is a detached clone of the request context, so
// the log line keeps its correlation identifiers.
func (s *Server) logLateResult(ctx context.Context, resultChan <-chan tool.Response) {
	logger := tracing.LoggerFromContext(ctx, s.logger)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("Panic while draining late tool result")
		}
	}()

	resp, open := <-resultChan
	if !open {
		return
	}

	event := logger.Info()
	if resp.Status == tool.StatusFailed || resp.Status == tool.StatusRejected {
		event = logger.Warn()
	}
	event.
		Str("status", string(resp.Status)).
		Str("requestId", resp.RequestID).
		Msg("Late tool result")
}
