package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Wizard provides an interactive configuration wizard.
type Wizard struct {
	reader *bufio.Reader
}

// NewWizard creates a new configuration wizard.
func NewWizard() *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
	}
}

// Run walks the user through the required settings and returns the
// resulting configuration.
func (w *Wizard) Run() (*Config, error) {
	fmt.Println("=== zaprouter configuration wizard ===")
	fmt.Println()

	cfg := DefaultConfig()
	validator := NewValidator()

	// Gateway
	fmt.Println("WhatsApp gateway (Z-API):")
	for {
		fmt.Print("Instance base URL: ")
		url, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if url == "" {
			fmt.Println("Error: base URL is required")
			continue
		}
		cfg.ZAPI.BaseURL = url
		break
	}
	for {
		fmt.Print("Client token: ")
		token, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if token == "" {
			fmt.Println("Error: client token is required")
			continue
		}
		cfg.ZAPI.ClientToken = token
		break
	}

	fmt.Println()

	// AI provider
	fmt.Println("Completion provider:")
	fmt.Print("Provider (openai/anthropic) [openai]: ")
	provider, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if provider == "" {
		provider = "openai"
	}
	if err := validator.ValidateProvider(provider); err != nil {
		fmt.Printf("Warning: %v, using default (openai)\n", err)
		provider = "openai"
	}
	cfg.AI.Provider = provider

	for {
		fmt.Printf("%s API key: ", provider)
		key, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateAPIKey(key, provider); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		cfg.AI.APIKey = key
		break
	}

	if provider != "openai" {
		for {
			fmt.Print("OpenAI API key for Whisper transcription: ")
			key, err := w.readLine()
			if err != nil {
				return nil, err
			}
			if err := validator.ValidateAPIKey(key, "openai"); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			cfg.Transcription.OpenAIAPIKey = key
			break
		}
	}

	fmt.Println()

	// Forwarding destination
	fmt.Println("Fallback forwarding:")
	for {
		fmt.Print("Destination phone (digits with country code): ")
		phone, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if err := validator.ValidatePhone(phone); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		cfg.Forwarding.DestinationPhone = phone
		break
	}

	fmt.Println()

	// Log level
	fmt.Println("Logging:")
	fmt.Print("Log level (debug/info/warn/error) [info]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Printf("Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Println()
	fmt.Println("Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
