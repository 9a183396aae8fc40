package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired sets the two keys Load refuses to run without.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("API_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("OPENROUTER_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("RECAGENT_PORT", "")
	t.Setenv("API_TIMEOUT", "")
	t.Setenv("MAX_HISTORY", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Upstream.Timeout)
	}
	if cfg.Session.MaxHistory != 50 {
		t.Errorf("MaxHistory = %d, want 50", cfg.Session.MaxHistory)
	}
	if cfg.LLM.Model != "deepseek/deepseek-chat" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("BaseURL = %q", cfg.LLM.BaseURL)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RECAGENT_PORT", "5123")
	t.Setenv("RECAGENT_API_TOKEN", "tok")
	t.Setenv("LLM_MODEL", "other/model")
	t.Setenv("MAX_HISTORY", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 5123 || cfg.Server.APIToken != "tok" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.LLM.Model != "other/model" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.Session.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d", cfg.Session.MaxHistory)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestLoadTimeoutFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"45s", 45 * time.Second},
		{"2m", 2 * time.Minute},
		{"60", 60 * time.Second}, // bare number means seconds
		{"not-a-duration", 30 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			setRequired(t)
			t.Setenv("API_TIMEOUT", tc.raw)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Upstream.Timeout != tc.want {
				t.Fatalf("Timeout = %v, want %v", cfg.Upstream.Timeout, tc.want)
			}
		})
	}
}

func TestLoadInvalidPortKeepsDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("RECAGENT_PORT", "not-a-port")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Fatalf("Port = %d, want default 4000", cfg.Server.Port)
	}
}

func TestLoadMissingRequiredKeys(t *testing.T) {
	t.Run("missing upstream base URL", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "")
		t.Setenv("OPENROUTER_API_KEY", "test-key")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "API_BASE_URL") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("missing LLM API key", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "http://127.0.0.1:8080")
		t.Setenv("OPENROUTER_API_KEY", "")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
			t.Fatalf("err = %v", err)
		}
	})
}
