package transcription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

// Transcriber converts a remote audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) Result
}

// WhisperTranscriber implements Transcriber with OpenAI's audio
// transcription API. Oversized files are compressed before upload.
type WhisperTranscriber struct {
	client     openai.Client
	model      string
	compressor Compressor
	httpClient *http.Client
}

// NewWhisperTranscriber creates a transcriber for the given model
// (e.g. "whisper-1").
func NewWhisperTranscriber(apiKey, model string, compressor Compressor) *WhisperTranscriber {
	return &WhisperTranscriber{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		compressor: compressor,
		httpClient: http.DefaultClient,
	}
}

// Transcribe downloads the audio, compresses it if needed and submits it for
// transcription. All failures are reported through the result, never raised.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, req Request) Result {
	log.Info().Str("url", req.AudioURL).Msg("Downloading audio")

	tempFile, err := t.download(ctx, req.AudioURL)
	if err != nil {
		log.Error().Err(err).Msg("Error downloading audio file")
		return Errored(req.PhoneNumber, fmt.Sprintf("Error downloading audio file: %v", err), req.MessageID)
	}
	defer os.Remove(tempFile)

	compressed, err := t.compressor.CompressIfNeeded(tempFile)
	if err != nil {
		log.Error().Err(err).Msg("Error compressing audio file")
		return Errored(req.PhoneNumber, fmt.Sprintf("Error processing audio file: %v", err), req.MessageID)
	}
	if compressed != tempFile {
		defer os.Remove(compressed)
	}

	f, err := os.Open(compressed)
	if err != nil {
		return Errored(req.PhoneNumber, fmt.Sprintf("Error opening audio file: %v", err), req.MessageID)
	}
	defer f.Close()

	log.Info().Str("model", t.model).Msg("Transcribing audio file")

	transcription, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(t.model),
	})
	if err != nil {
		log.Error().Err(err).Msg("Transcription API call failed")
		return Errored(req.PhoneNumber, fmt.Sprintf("Error transcribing audio: %v", err), req.MessageID)
	}

	return Succeeded(req.PhoneNumber, transcription.Text, req.MessageID)
}

// download fetches the audio into a temp file named with the URL's extension.
func (t *WhisperTranscriber) download(ctx context.Context, audioURL string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("audio-%s.%s", uuid.NewString(), extensionFromURL(audioURL)))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return path, nil
}

// extensionFromURL derives the audio file extension from the URL path,
// defaulting to mp3.
func extensionFromURL(audioURL string) string {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return "mp3"
	}

	ext := strings.TrimPrefix(filepath.Ext(parsed.Path), ".")
	if ext == "" || len(ext) > 5 || strings.Contains(ext, "/") {
		return "mp3"
	}
	return strings.ToLower(ext)
}
