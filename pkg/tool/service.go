package tool

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service dispatches execution requests to registered tools. It validates a
// request against the resolved tool, delegates execution, and normalizes
// every failure into a response; no error or panic crosses this boundary.
type Service struct {
	registry *Registry
}

// NewService creates a dispatch service backed by the given registry.
func NewService(registry *Registry) *Service {
	return &Service{registry: registry}
}

// ExecuteAsync resolves the requested tool, validates the request parameters
// and delegates to the tool's async entry point. A fresh correlation id is
// generated for every call. Unsupported tools and validation failures produce
// an immediately resolved rejected response; unexpected panics produce a
// failed response.
func (s *Service) ExecuteAsync(req Request) (result <-chan Response) {
	toolName := req.ToolName
	requestID := uuid.NewString()

	log.Info().
		Str("tool", toolName).
		Str("requestId", requestID).
		Msg("Executing tool asynchronously")

	if !s.IsToolSupported(toolName) {
		log.Warn().Str("tool", toolName).Msg("Tool is not supported")
		return Respond(Rejected(toolName, fmt.Sprintf("Tool '%s' is not supported", toolName), requestID))
	}

	t, _ := s.registry.Get(toolName)

	if validationError := t.ValidateParameters(req); validationError != "" {
		log.Warn().
			Str("tool", toolName).
			Str("error", validationError).
			Msg("Invalid parameters for tool")
		return Respond(Rejected(toolName, validationError, requestID))
	}

	// Propagate the correlation id so the tool's responses carry it.
	if req.Parameters == nil {
		req.Parameters = make(map[string]interface{})
	}
	if _, ok := req.Parameters["requestId"]; !ok {
		req.Parameters["requestId"] = requestID
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("tool", toolName).
				Interface("panic", r).
				Msg("Error executing tool asynchronously")
			result = Respond(Failed(toolName, fmt.Sprintf("Error executing tool: %v", r), requestID))
		}
	}()

	return t.ExecuteAsync(req)
}

// IsToolSupported reports whether the named tool is registered.
func (s *Service) IsToolSupported(toolName string) bool {
	return s.registry.Has(toolName)
}
