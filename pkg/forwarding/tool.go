// Package forwarding implements the fallback tool: inbound messages from
// unmapped senders are forwarded to a fixed destination phone.
package forwarding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshdias/zaprouter/pkg/tool"
	"github.com/joshdias/zaprouter/pkg/zapi"
	"github.com/rs/zerolog/log"
)

// ToolName identifies the forwarding tool in execution requests.
const ToolName = "forwarding"

// Gateway is the messaging surface used to forward and reference messages.
type Gateway interface {
	SendMessage(ctx context.Context, phone, message string, opts zapi.SendOptions) bool
	ForwardMessage(ctx context.Context, phone, messageID, messagePhone string) string
}

// Tool forwards an inbound message to the configured destination and sends
// a reference message identifying the original sender. Unlike the
// long-running tools it completes inline and resolves its channel with the
// terminal outcome.
type Tool struct {
	gateway   Gateway
	forwardTo string
}

// NewTool creates the forwarding tool with the given destination phone.
func NewTool(gateway Gateway, forwardTo string) *Tool {
	return &Tool{
		gateway:   gateway,
		forwardTo: forwardTo,
	}
}

// Name implements tool.Tool.
func (t *Tool) Name() string {
	return ToolName
}

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Forwards messages to a specific phone number"
}

// ValidateParameters implements tool.Tool.
func (t *Tool) ValidateParameters(req tool.Request) string {
	if req.StringParam("phoneNumber", "") == "" {
		return "Missing required parameter: phoneNumber"
	}
	if req.StringParam("messageContent", "") == "" {
		return "Missing required parameter: messageContent"
	}
	if req.StringParam("messageId", "") == "" {
		return "Missing required parameter: messageId"
	}
	return ""
}

// Execute implements tool.Tool.
func (t *Tool) Execute(req tool.Request) (resp tool.Response) {
	requestID := req.StringParam("requestId", uuid.NewString())
	log.Info().Str("requestId", requestID).Msg("Executing forwarding tool")

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Error executing forwarding tool")
			resp = tool.Failed(ToolName, fmt.Sprintf("Error executing forwarding: %v", r), requestID)
		}
	}()

	ctx := context.Background()

	senderPhone := req.StringParam("phoneNumber", "")
	messageContent := req.StringParam("messageContent", "")
	messageType := req.StringParam("messageType", "")
	senderName := req.StringParam("senderName", "Unknown")
	messageID := req.StringParam("messageId", "")

	if senderPhone == "" || messageContent == "" {
		return tool.Rejected(ToolName, "Missing required parameters: phoneNumber and messageContent", requestID)
	}

	forwardedID := t.gateway.ForwardMessage(ctx, t.forwardTo, messageID, senderPhone)
	if forwardedID == "" {
		return tool.Failed(ToolName, "Failed to forward message", requestID)
	}

	referenceSent := t.gateway.SendMessage(ctx, t.forwardTo,
		referenceMessage(senderPhone, senderName, messageType),
		zapi.SendOptions{ReferenceID: forwardedID})
	if !referenceSent {
		log.Warn().Msg("Failed to send reference message")
	}

	return tool.Completed(ToolName, map[string]interface{}{
		"forwarded":          true,
		"forwardedTo":        t.forwardTo,
		"forwardedMessageId": forwardedID,
		"referenceSent":      referenceSent,
	}, requestID)
}

// ExecuteAsync implements tool.Tool. Forwarding is quick, so the work runs
// on a one-shot goroutine and the channel resolves with the terminal result.
func (t *Tool) ExecuteAsync(req tool.Request) <-chan tool.Response {
	ch := make(chan tool.Response, 1)
	go func() {
		ch <- t.Execute(req)
		close(ch)
	}()
	return ch
}

// referenceMessage describes the forwarded message's origin.
func referenceMessage(senderPhone, senderName, messageType string) string {
	var b strings.Builder
	b.WriteString("Message forwarded from:\n")
	fmt.Fprintf(&b, "- Phone: %s\n", senderPhone)
	fmt.Fprintf(&b, "- Name: %s\n", senderName)
	if messageType != "" {
		fmt.Fprintf(&b, "- Type: %s\n", messageType)
	}
	fmt.Fprintf(&b, "- Time: %s", time.Now().Format("2006-01-02 15:04:05"))
	return b.String()
}
