package transcription

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshdias/zaprouter/pkg/ai"
	"github.com/rs/zerolog/log"
)

// processingPrompt instructs the completion model to clean up a raw
// transcription and append an intent summary for the receiver.
const processingPrompt = `You are an expert transcription processor acting as an intermediary between a sender and a receiver. Your task is to:

1. Respond in the same language as the transcription (do not translate).
2. Correct any transcription errors or inconsistencies.
3. Improve grammar and punctuation.
4. Format the text for better readability.
5. Preserve the original meaning and intent.
6. If the transcription is empty, respond with: "Transcription is empty. No processing can be done."
7. Do not mention errors or processing steps in the final output.

At the end, include a compact and simple summary with two parts:
    - Intent: What the sender wants or means.
    - Response Suggestion: How the receiver should respond.

8. Follow the format (nothing else):
    [transcribedText]

    *[intent_title]*: [intent]

    *[response_suggestion_title]*: [response]

Keep both parts clear and concise.`

// Workflow runs the full transcription pipeline: validation, speech-to-text,
// then completion-model cleanup of the raw transcript.
type Workflow struct {
	transcriber Transcriber
	completion  ai.CompletionProvider
}

// NewWorkflow creates a workflow over the given transcriber and completion
// provider.
func NewWorkflow(transcriber Transcriber, completion ai.CompletionProvider) *Workflow {
	return &Workflow{
		transcriber: transcriber,
		completion:  completion,
	}
}

// Process runs the pipeline for one request. Failures are reported through
// the result; nothing is raised past this boundary.
func (w *Workflow) Process(ctx context.Context, req Request) Result {
	if validationError := validate(req); validationError != "" {
		log.Warn().Str("error", validationError).Msg("Transcription request validation failed")
		return Errored(req.PhoneNumber, validationError, req.MessageID)
	}

	log.Info().Str("phone", req.PhoneNumber).Msg("Transcribing audio")
	result := w.transcriber.Transcribe(ctx, req)
	if !result.Success {
		return result
	}

	log.Info().Str("phone", req.PhoneNumber).Msg("Processing transcription with completion model")

	processed, err := w.completion.Complete(ctx, processingPrompt,
		fmt.Sprintf("Process this audio transcription: %s", result.Text))
	if err != nil {
		log.Error().Err(err).Msg("Error in transcription workflow")
		return Errored(req.PhoneNumber, fmt.Sprintf("Error in transcription workflow: %v", err), req.MessageID)
	}

	return Succeeded(req.PhoneNumber, processed, req.MessageID)
}

// validate checks the request fields.
func validate(req Request) string {
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return "Phone number is required"
	}
	if strings.TrimSpace(req.AudioURL) == "" {
		return "Audio URL is required"
	}
	if !strings.HasPrefix(req.AudioURL, "http://") && !strings.HasPrefix(req.AudioURL, "https://") {
		return "Audio URL must be a valid HTTP or HTTPS URL"
	}
	return ""
}
