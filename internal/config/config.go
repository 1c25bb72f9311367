package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every section of the service configuration.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Journal JournalConfig
	Speech  SpeechConfig
	Genie   GenieConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	journal, err := loadJournalConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	genie, err := loadGenieConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Journal: journal, Speech: speech, Genie: genie}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the hosted model provider.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature float64
	MaxTokens   *int
}

// Enabled reports whether the required provider credential is present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the provider chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("provider credential or model missing: set ARK_API_KEY (or AK/SK pair) and GENIE_MODEL")
	}

	temperature := float32(c.Temperature)

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: &temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	// The genie keeps a fixed, fairly hot temperature for the whole conversation.
	temperature := 0.9
	if override, err := parseOptionalFloatEnv("GENIE_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	maxTokens, err := parseOptionalIntEnv("GENIE_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("GENIE_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// JournalConfig describes the optional interaction-logging webhook.
type JournalConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// Enabled reports whether a webhook URL was configured.
func (c JournalConfig) Enabled() bool {
	return c.Endpoint != ""
}

func loadJournalConfig() (JournalConfig, error) {
	timeoutSeconds := 10
	if override, err := parseOptionalIntEnv("LOGGING_TIMEOUT"); err != nil {
		return JournalConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	return JournalConfig{
		Endpoint: strings.TrimSpace(os.Getenv("LOGGING_ENDPOINT")),
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// SpeechConfig describes the optional TTS synthesis backend.
type SpeechConfig struct {
	AppID       string
	AccessToken string
	BaseURL     string
	Language    string
	Voice       string
	Rate        float32
	Format      string
	Timeout     int
	Enabled     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("SPEECH_TIMEOUT"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	// The genie talks slightly faster than neutral so he sounds lively.
	rate := float32(1.05)
	if override, err := parseOptionalFloat32Env("SPEECH_RATE"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil {
		rate = *override
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))
	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))

	return SpeechConfig{
		AppID:       appID,
		AccessToken: accessToken,
		BaseURL:     getEnvOrDefault("SPEECH_BASE_URL", ""),
		Language:    getEnvOrDefault("SPEECH_LANGUAGE", "it-IT"),
		Voice:       getEnvOrDefault("SPEECH_VOICE", ""),
		Rate:        rate,
		Format:      getEnvOrDefault("SPEECH_FORMAT", "mp3"),
		Timeout:     timeoutSeconds,
		Enabled:     appID != "" && accessToken != "",
	}, nil
}

// GenieConfig describes behaviour of the conversation itself.
type GenieConfig struct {
	GreetingDelay time.Duration
}

func loadGenieConfig() (GenieConfig, error) {
	// Matches the entry animation of the widget: the greeting appears once the
	// lamp smoke has cleared.
	delayMillis := 800
	if override, err := parseOptionalIntEnv("GENIE_GREETING_DELAY_MS"); err != nil {
		return GenieConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return GenieConfig{}, fmt.Errorf("GENIE_GREETING_DELAY_MS must not be negative")
		}
		delayMillis = *override
	}

	return GenieConfig{GreetingDelay: time.Duration(delayMillis) * time.Millisecond}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
