package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.ZAPI.BaseURL = "https://api.z-api.io/instances/abc/token/xyz"
	cfg.ZAPI.ClientToken = "token"
	cfg.AI.APIKey = "sk-test"
	cfg.Transcription.OpenAIAPIKey = "sk-test"
	cfg.Forwarding.DestinationPhone = "5544999990000"
	return cfg
}

func TestValidateAPIKey(t *testing.T) {
	v := NewValidator()

	assert.Error(t, v.ValidateAPIKey("", "openai"))
	assert.Error(t, v.ValidateAPIKey("not-a-key", "openai"))
	assert.NoError(t, v.ValidateAPIKey("sk-abc", "openai"))

	assert.Error(t, v.ValidateAPIKey("sk-abc", "anthropic"))
	assert.NoError(t, v.ValidateAPIKey("sk-ant-abc", "anthropic"))
}

func TestValidateProvider(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateProvider("openai"))
	assert.NoError(t, v.ValidateProvider("anthropic"))
	assert.Error(t, v.ValidateProvider("gemini"))
	assert.Error(t, v.ValidateProvider(""))
}

func TestValidatePhone(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidatePhone("5544999990000"))
	assert.Error(t, v.ValidatePhone(""))
	assert.Error(t, v.ValidatePhone("+5544999990000"))
	assert.Error(t, v.ValidatePhone("55 44 99999 0000"))
	assert.Error(t, v.ValidatePhone("123"))
	assert.Error(t, v.ValidatePhone("1234567890123456"))

	// Group chat ids are longer than phone numbers and carry a suffix.
	assert.NoError(t, v.ValidatePhone("120363419205372574-group"))
	assert.Error(t, v.ValidatePhone("-group"))
	assert.Error(t, v.ValidatePhone("12036341920537x574-group"))
}

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.NoError(t, v.ValidateLogLevel(level))
	}
	assert.Error(t, v.ValidateLogLevel("verbose"))
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	t.Run("valid config has no errors", func(t *testing.T) {
		assert.Empty(t, v.ValidateConfig(validConfig()))
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 0
		cfg.ZAPI.BaseURL = ""
		cfg.AI.Provider = "gemini"
		cfg.Forwarding.DestinationPhone = "abc"

		errs := v.ValidateConfig(cfg)
		require.Len(t, errs, 4)
	})

	t.Run("whisper key is required even for anthropic completions", func(t *testing.T) {
		cfg := validConfig()
		cfg.AI.Provider = "anthropic"
		cfg.AI.APIKey = "sk-ant-abc"
		cfg.Transcription.OpenAIAPIKey = ""

		errs := v.ValidateConfig(cfg)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "transcription openai_api_key")
	})

	t.Run("group destination is a valid forwarding target", func(t *testing.T) {
		cfg := validConfig()
		cfg.Forwarding.DestinationPhone = "120363419205372574-group"
		assert.Empty(t, v.ValidateConfig(cfg))
	})

	t.Run("routing mapping phones are validated", func(t *testing.T) {
		cfg := validConfig()
		cfg.Routing.Mappings = map[string]string{"not-a-phone": "transcription"}

		errs := v.ValidateConfig(cfg)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "routing mapping")
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, 30, cfg.Server.SyncWaitSeconds)
	assert.True(t, cfg.Server.MetricsEnabled)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, "whisper-1", cfg.Transcription.Model)
	assert.Equal(t, "ffmpeg", cfg.Transcription.FFmpegBinary)

	assert.Equal(t, "MARINGA", cfg.CSV.FilterCity)
	assert.Equal(t, []string{"Leilão", "Licitação"}, cfg.CSV.FilterSaleModes)

	assert.Equal(t, 3, cfg.Notification.RetryAttempts)
	assert.Equal(t, 1, cfg.Notification.RetryDelaySeconds)
}
