// Package config defines the application configuration, loaded from a JSON
// file and environment variables.
package config

import (
	"encoding/json"

	"github.com/joshdias/zaprouter/internal/logger"
)

// Config is the main application configuration.
type Config struct {
	// Server holds the inbound webhook server settings.
	Server ServerConfig `json:"server" mapstructure:"server"`

	// ZAPI holds the WhatsApp gateway client settings.
	ZAPI ZAPIConfig `json:"zapi" mapstructure:"zapi"`

	// AI selects and configures the completion provider.
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Transcription configures the audio transcription pipeline.
	Transcription TranscriptionConfig `json:"transcription" mapstructure:"transcription"`

	// CSV configures the property listing processor.
	CSV CSVConfig `json:"csv" mapstructure:"csv"`

	// Forwarding configures the fallback forwarding tool.
	Forwarding ForwardingConfig `json:"forwarding" mapstructure:"forwarding"`

	// Notification controls delivery retries for outbound messages.
	Notification NotificationConfig `json:"notification" mapstructure:"notification"`

	// Routing seeds the phone-to-tool mapping table.
	Routing RoutingConfig `json:"routing" mapstructure:"routing"`

	// Logging configures log output.
	Logging logger.Config `json:"logging" mapstructure:"logging"`

	// Tracing configures the OpenTelemetry tracer provider.
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`

	// DataDir is where logs and runtime files live.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds webhook server configuration.
type ServerConfig struct {
	Host               string `json:"host" mapstructure:"host"`
	Port               int    `json:"port" mapstructure:"port"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
	SyncWaitSeconds    int    `json:"sync_wait_seconds" mapstructure:"sync_wait_seconds"`
	AuthToken          string `json:"auth_token" mapstructure:"auth_token"`
	MetricsEnabled     bool   `json:"metrics_enabled" mapstructure:"metrics_enabled"`
}

// ZAPIConfig holds the WhatsApp gateway client configuration.
type ZAPIConfig struct {
	BaseURL        string `json:"base_url" mapstructure:"base_url"`
	ClientToken    string `json:"client_token" mapstructure:"client_token"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	LogRequests    bool   `json:"log_requests" mapstructure:"log_requests"`
}

// AIConfig holds the completion provider configuration.
type AIConfig struct {
	Provider string `json:"provider" mapstructure:"provider"` // openai, anthropic
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	Model    string `json:"model" mapstructure:"model"`
}

// TranscriptionConfig holds the audio transcription settings.
type TranscriptionConfig struct {
	// OpenAIAPIKey is the key used for Whisper. Defaults to AI.APIKey when
	// the AI provider is openai.
	OpenAIAPIKey string `json:"openai_api_key" mapstructure:"openai_api_key"`
	Model        string `json:"model" mapstructure:"model"`
	FFmpegBinary string `json:"ffmpeg_binary" mapstructure:"ffmpeg_binary"`
	Workers      int    `json:"workers" mapstructure:"workers"`
	QueueSize    int    `json:"queue_size" mapstructure:"queue_size"`
}

// CSVConfig holds the property listing processor settings.
type CSVConfig struct {
	Workers           int      `json:"workers" mapstructure:"workers"`
	QueueSize         int      `json:"queue_size" mapstructure:"queue_size"`
	FilterCity        string   `json:"filter_city" mapstructure:"filter_city"`
	FilterDescription string   `json:"filter_description" mapstructure:"filter_description"`
	FilterSaleModes   []string `json:"filter_sale_modes" mapstructure:"filter_sale_modes"`
}

// ForwardingConfig holds the fallback forwarding tool settings.
type ForwardingConfig struct {
	DestinationPhone string `json:"destination_phone" mapstructure:"destination_phone"`
}

// NotificationConfig controls outbound delivery retries.
type NotificationConfig struct {
	RetryAttempts     int `json:"retry_attempts" mapstructure:"retry_attempts"`
	RetryDelaySeconds int `json:"retry_delay_seconds" mapstructure:"retry_delay_seconds"`
}

// RoutingConfig seeds the phone-to-tool mapping table.
type RoutingConfig struct {
	Mappings map[string]string `json:"mappings" mapstructure:"mappings"`
}

// TracingConfig holds the tracer provider settings.
type TracingConfig struct {
	SampleRatio float64 `json:"sample_ratio" mapstructure:"sample_ratio"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			RateLimitPerMinute: 100,
			SyncWaitSeconds:    30,
			MetricsEnabled:     true,
		},
		ZAPI: ZAPIConfig{
			TimeoutSeconds: 30,
		},
		AI: AIConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Transcription: TranscriptionConfig{
			Model:        "whisper-1",
			FFmpegBinary: "ffmpeg",
			Workers:      5,
			QueueSize:    100,
		},
		CSV: CSVConfig{
			Workers:           2,
			QueueSize:         50,
			FilterCity:        "MARINGA",
			FilterDescription: "Casa",
			FilterSaleModes:   []string{"Leilão", "Licitação"},
		},
		Notification: NotificationConfig{
			RetryAttempts:     3,
			RetryDelaySeconds: 1,
		},
		Routing: RoutingConfig{
			Mappings: map[string]string{},
		},
		Logging: logger.DefaultConfig(),
		Tracing: TracingConfig{
			SampleRatio: 1,
		},
	}
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
