package config

import (
	"fmt"
	"strings"
)

// Validator validates configuration values.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAPIKey validates an API key format for the given provider.
func (v *Validator) ValidateAPIKey(key string, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}

// ValidateProvider validates the completion provider selection.
func (v *Validator) ValidateProvider(provider string) error {
	validProviders := []string{"openai", "anthropic"}
	for _, valid := range validProviders {
		if provider == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid AI provider: %s (must be one of: %s)", provider, strings.Join(validProviders, ", "))
}

// ValidatePhone validates a recipient in the gateway's format: a digits-only
// phone number with country code, or a group chat id ("<digits>-group").
func (v *Validator) ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("phone number cannot be empty")
	}

	digits, isGroup := strings.CutSuffix(phone, "-group")
	if digits == "" {
		return fmt.Errorf("invalid phone number: %s", phone)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid phone number: %s (digits only, with country code)", phone)
		}
	}
	if !isGroup && (len(digits) < 10 || len(digits) > 15) {
		return fmt.Errorf("invalid phone number length: %s", phone)
	}
	return nil
}

// ValidateLogLevel validates the log level.
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation and returns all problems
// found.
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, fmt.Errorf("server port must be between 1 and 65535"))
	}
	if cfg.Server.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Errorf("server rate_limit_per_minute must be >= 0"))
	}
	if cfg.Server.SyncWaitSeconds <= 0 {
		errors = append(errors, fmt.Errorf("server sync_wait_seconds must be > 0"))
	}

	if cfg.ZAPI.BaseURL == "" {
		errors = append(errors, fmt.Errorf("zapi base_url is required"))
	}
	if cfg.ZAPI.ClientToken == "" {
		errors = append(errors, fmt.Errorf("zapi client_token is required"))
	}

	if err := v.ValidateProvider(cfg.AI.Provider); err != nil {
		errors = append(errors, err)
	} else if err := v.ValidateAPIKey(cfg.AI.APIKey, cfg.AI.Provider); err != nil {
		errors = append(errors, err)
	}
	if cfg.AI.Model == "" {
		errors = append(errors, fmt.Errorf("ai model is required"))
	}

	if cfg.Transcription.OpenAIAPIKey == "" {
		errors = append(errors, fmt.Errorf("transcription openai_api_key is required (Whisper runs on OpenAI)"))
	}
	if cfg.Transcription.Workers <= 0 {
		errors = append(errors, fmt.Errorf("transcription workers must be > 0"))
	}

	if cfg.CSV.Workers <= 0 {
		errors = append(errors, fmt.Errorf("csv workers must be > 0"))
	}

	if cfg.Forwarding.DestinationPhone == "" {
		errors = append(errors, fmt.Errorf("forwarding destination_phone is required"))
	} else if err := v.ValidatePhone(cfg.Forwarding.DestinationPhone); err != nil {
		errors = append(errors, err)
	}

	if cfg.Notification.RetryAttempts < 0 {
		errors = append(errors, fmt.Errorf("notification retry_attempts must be >= 0"))
	}
	if cfg.Notification.RetryDelaySeconds < 0 {
		errors = append(errors, fmt.Errorf("notification retry_delay_seconds must be >= 0"))
	}

	for phone := range cfg.Routing.Mappings {
		if err := v.ValidatePhone(phone); err != nil {
			errors = append(errors, fmt.Errorf("routing mapping: %w", err))
		}
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
