package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY",
		"GENIE_MODEL", "GENIE_TEMPERATURE", "GENIE_MAX_TOKENS",
		"GENIE_GREETING_DELAY_MS", "LOGGING_ENDPOINT", "LOGGING_TIMEOUT",
		"SPEECH_APP_ID", "SPEECH_ACCESS_TOKEN", "SPEECH_RATE", "SPEECH_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.AI.Temperature != 0.9 {
		t.Fatalf("unexpected temperature: %v", cfg.AI.Temperature)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI must be disabled without credentials")
	}
	if cfg.Journal.Enabled() {
		t.Fatal("journal must be disabled without an endpoint")
	}
	if cfg.Journal.Timeout != 10*time.Second {
		t.Fatalf("unexpected journal timeout: %v", cfg.Journal.Timeout)
	}
	if cfg.Speech.Enabled {
		t.Fatal("speech must be disabled without credentials")
	}
	if cfg.Speech.Rate != 1.05 {
		t.Fatalf("unexpected speech rate: %v", cfg.Speech.Rate)
	}
	if cfg.Genie.GreetingDelay != 800*time.Millisecond {
		t.Fatalf("unexpected greeting delay: %v", cfg.Genie.GreetingDelay)
	}
}

func TestLoadServerAddr(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "9090")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}

	t.Setenv("PORT", "127.0.0.1:9090")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
}

func TestAIConfigEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  AIConfig
		want bool
	}{
		{"api key and model", AIConfig{APIKey: "k", Model: "m"}, true},
		{"ak/sk pair and model", AIConfig{AccessKey: "ak", SecretKey: "sk", Model: "m"}, true},
		{"missing model", AIConfig{APIKey: "k"}, false},
		{"missing secret", AIConfig{AccessKey: "ak", Model: "m"}, false},
		{"nothing", AIConfig{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.Enabled(); got != tc.want {
				t.Fatalf("Enabled() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLoadTemperatureOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENIE_TEMPERATURE", "0.3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", cfg.AI.Temperature)
	}
}

func TestLoadRejectsBadTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENIE_TEMPERATURE", "hot")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric temperature")
	}
}

func TestLoadRejectsNegativeGreetingDelay(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENIE_GREETING_DELAY_MS", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a negative greeting delay")
	}
}

func TestLoadMaxTokens(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENIE_MAX_TOKENS", "512")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.MaxTokens == nil || *cfg.AI.MaxTokens != 512 {
		t.Fatalf("unexpected max tokens: %v", cfg.AI.MaxTokens)
	}
}

func TestLoadSpeechEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPEECH_APP_ID", "app")
	t.Setenv("SPEECH_ACCESS_TOKEN", "token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.Speech.Enabled {
		t.Fatal("speech should be enabled with both credentials")
	}
	if cfg.Speech.Language != "it-IT" {
		t.Fatalf("unexpected language: %s", cfg.Speech.Language)
	}
}
