package csvproc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshdias/zaprouter/pkg/tool"
	"github.com/rs/zerolog/log"
)

// ToolName identifies the CSV processing tool in execution requests.
const ToolName = "csv-processing"

// Tool adapts the CSV processing service to the tool dispatch contract.
type Tool struct {
	service *Service
}

// NewTool creates the CSV processing tool over the given service.
func NewTool(service *Service) *Tool {
	return &Tool{service: service}
}

// Name implements tool.Tool.
func (t *Tool) Name() string {
	return ToolName
}

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Processes CSV documents, renames columns, maps to JSON, and filters data based on specific criteria"
}

// ValidateParameters implements tool.Tool.
func (t *Tool) ValidateParameters(req tool.Request) string {
	if req.Parameters == nil {
		return "Parameters are required"
	}

	if strings.TrimSpace(req.StringParam("phoneNumber", "")) == "" {
		return "Phone number is required"
	}

	contentURL := req.StringParam("contentUrl", "")
	if strings.TrimSpace(contentURL) == "" {
		return "Content URL is required"
	}

	contentType := req.StringParam("contentType", "")
	if strings.TrimSpace(contentType) == "" {
		return "Content type is required"
	}
	if contentType != "document" {
		return "Content type must be 'document'"
	}

	if !strings.HasPrefix(contentURL, "http://") && !strings.HasPrefix(contentURL, "https://") {
		return "Content URL must be a valid HTTP or HTTPS URL"
	}

	return ""
}

// Execute implements tool.Tool. Processing is asynchronous; the response is
// accepted once the work is scheduled.
func (t *Tool) Execute(req tool.Request) (resp tool.Response) {
	requestID := uuid.NewString()
	log.Info().Str("requestId", requestID).Msg("Executing CSV processing tool")

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Error executing CSV processing tool")
			resp = tool.Failed(ToolName, fmt.Sprintf("Error executing CSV processing: %v", r), requestID)
		}
	}()

	t.service.ProcessAsync(Request{
		PhoneNumber: req.StringParam("phoneNumber", ""),
		DocumentURL: req.StringParam("contentUrl", ""),
		MessageID:   req.StringParam("messageId", ""),
	})

	return tool.Accepted(ToolName, requestID)
}

// ExecuteAsync implements tool.Tool.
func (t *Tool) ExecuteAsync(req tool.Request) <-chan tool.Response {
	return tool.Respond(t.Execute(req))
}
