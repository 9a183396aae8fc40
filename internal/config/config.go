// Package config loads runtime configuration from defaults, an optional
// .env file, and environment variables — later sources win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Upstream UpstreamConfig
	Session  SessionConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	MaxHistory int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4000,
		},
		LLM: LLMConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "deepseek/deepseek-chat",
		},
		Upstream: UpstreamConfig{
			Timeout: 30 * time.Second,
		},
		Session: SessionConfig{
			MaxHistory: 50,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "recommend-agent")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "recommend-agent")
}

type keyType int

const (
	kString keyType = iota
	kInt
	kDuration
)

type keySpec struct {
	env   string
	typ   keyType
	apply func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		env: "RECAGENT_PORT", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		env: "RECAGENT_API_TOKEN", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
	},
	{
		env: "OPENROUTER_API_KEY", typ: kString,
		apply: func(cfg *Config, v any) { cfg.LLM.APIKey = v.(string) },
	},
	{
		env: "LLM_BASE_URL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.LLM.BaseURL = v.(string) },
	},
	{
		env: "LLM_MODEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.LLM.Model = v.(string) },
	},
	{
		env: "API_BASE_URL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Upstream.BaseURL = v.(string) },
	},
	{
		env: "API_TIMEOUT", typ: kDuration,
		apply: func(cfg *Config, v any) { cfg.Upstream.Timeout = v.(time.Duration) },
	},
	{
		env: "MAX_HISTORY", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Session.MaxHistory = v.(int) },
	},
	{
		env: "RECAGENT_DATA_DIR", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		env: "LOG_LEVEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

// Load assembles the configuration. A .env file in the working directory is
// read first if present; real environment variables take precedence over it
// because godotenv never overwrites existing variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	applyEnvOverrides(&cfg)

	if cfg.Upstream.BaseURL == "" {
		return Config{}, fmt.Errorf("missing required config: matching API base URL. Set it via environment variable API_BASE_URL")
	}
	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: LLM API key. Set it via environment variable OPENROUTER_API_KEY")
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kDuration:
			if d, err := time.ParseDuration(raw); err == nil {
				s.apply(cfg, d)
			} else if secs, err2 := strconv.Atoi(raw); err2 == nil {
				// Bare numbers are treated as seconds.
				s.apply(cfg, time.Duration(secs)*time.Second)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse duration from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
