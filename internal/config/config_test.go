package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
logLevel: "debug"
openaiAPIKey: "sk-test"
openaiModel: "gpt-4o"
redisAddr: "localhost:6379"
messageRateLimitPerMin: 20
trustedProxyCIDRs:
  - "10.0.0.0/8"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.OpenAIAPIKey != "sk-test" || cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("openai fields not loaded: %+v", cfg)
	}
	if cfg.MessageRateLimitPerMin != 20 || len(cfg.TrustedProxyCIDRs) != 1 {
		t.Fatalf("rate limit fields not loaded: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
openaiAPIKey: "from-file"
`)
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("DATABASE_URL", "postgres://db/neurointake")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAIAPIKey != "from-env" {
		t.Fatalf("OpenAIAPIKey = %q, want env override", cfg.OpenAIAPIKey)
	}
	if cfg.DatabaseURL != "postgres://db/neurointake" {
		t.Fatalf("DatabaseURL = %q, want env override", cfg.DatabaseURL)
	}
}

func TestLoadAllowsMissingAPIKey(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
`)
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load without api key must succeed, got %v", err)
	}
	if cfg.OpenAIAPIKey != "" {
		t.Fatalf("OpenAIAPIKey = %q, want empty", cfg.OpenAIAPIKey)
	}
}

func TestLoadRejectsRedisWithoutLimit(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
openaiAPIKey: "sk-test"
redisAddr: "localhost:6379"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for redisAddr without messageRateLimitPerMin")
	}
}

func TestAssistantTimeoutDefault(t *testing.T) {
	if got := (FileConfig{}).AssistantTimeout(); got != 30*time.Second {
		t.Fatalf("default timeout = %v, want 30s", got)
	}
	if got := (FileConfig{AssistantTimeoutSeconds: 5}).AssistantTimeout(); got != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s", got)
	}
}
