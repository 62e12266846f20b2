package transcription

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshdias/zaprouter/pkg/tool"
	"github.com/rs/zerolog/log"
)

// ToolName identifies the transcription tool in execution requests.
const ToolName = "transcription"

// Tool adapts the transcription service to the tool dispatch contract.
type Tool struct {
	service *Service
}

// NewTool creates the transcription tool over the given service.
func NewTool(service *Service) *Tool {
	return &Tool{service: service}
}

// Name implements tool.Tool.
func (t *Tool) Name() string {
	return ToolName
}

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Transcribes audio from a URL to text using OpenAI's whisper-1 model"
}

// ValidateParameters implements tool.Tool.
func (t *Tool) ValidateParameters(req tool.Request) string {
	if req.Parameters == nil {
		return "Parameters are required"
	}

	if strings.TrimSpace(req.StringParam("phoneNumber", "")) == "" {
		return "Phone number is required"
	}

	audioURL := req.StringParam("contentUrl", "")
	if strings.TrimSpace(audioURL) == "" {
		return "Audio URL is required"
	}
	if !strings.HasPrefix(audioURL, "http://") && !strings.HasPrefix(audioURL, "https://") {
		return "Audio URL must be a valid HTTP or HTTPS URL"
	}

	return ""
}

// Execute implements tool.Tool. The transcription pipeline is fully
// asynchronous and reports its outcome through the gateway, so even the
// synchronous entry point returns an accepted response once the work is
// scheduled.
func (t *Tool) Execute(req tool.Request) (resp tool.Response) {
	requestID := uuid.NewString()
	log.Info().Str("requestId", requestID).Msg("Executing transcription tool")

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Error executing transcription tool")
			resp = tool.Failed(ToolName, fmt.Sprintf("Error executing transcription: %v", r), requestID)
		}
	}()

	t.service.ProcessAsync(Request{
		PhoneNumber: req.StringParam("phoneNumber", ""),
		AudioURL:    req.StringParam("contentUrl", ""),
		MessageID:   req.StringParam("messageId", ""),
	})

	return tool.Accepted(ToolName, requestID)
}

// ExecuteAsync implements tool.Tool. The returned channel resolves with an
// accepted response as soon as the work is scheduled; the real result is
// delivered out-of-band by the service.
func (t *Tool) ExecuteAsync(req tool.Request) <-chan tool.Response {
	return tool.Respond(t.Execute(req))
}
