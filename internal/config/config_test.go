package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENROUTER_API_KEY",
		"LLMJURY_THRESHOLD",
		"LLMJURY_MODE",
		"LLMJURY_MAX_ROUNDS",
		"LLMJURY_CONCURRENCY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv_WorksWithoutAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLMJURY_THRESHOLD", "0.9")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
	if cfg.Threshold != 0.9 {
		t.Errorf("Threshold = %g, want %g", cfg.Threshold, 0.9)
	}
}

func TestFromEnv_StillValidates(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLMJURY_MODE", "courtroom")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for unknown LLMJURY_MODE")
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when OPENROUTER_API_KEY is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "test-key")
	}
	if cfg.Threshold != 0.7 {
		t.Errorf("Threshold = %g, want %g", cfg.Threshold, 0.7)
	}
	if cfg.Mode != debate.ModeDeliberation {
		t.Errorf("Mode = %q, want %q", cfg.Mode, debate.ModeDeliberation)
	}
	if cfg.MaxRounds != 2 {
		t.Errorf("MaxRounds = %d, want %d", cfg.MaxRounds, 2)
	}
	if cfg.Concurrency != debate.DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", cfg.Concurrency, debate.DefaultConcurrency)
	}
}

func TestLoad_CustomEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "my-key")
	t.Setenv("LLMJURY_THRESHOLD", "0.85")
	t.Setenv("LLMJURY_MODE", "adversarial")
	t.Setenv("LLMJURY_MAX_ROUNDS", "4")
	t.Setenv("LLMJURY_CONCURRENCY", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "my-key" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "my-key")
	}
	if cfg.Threshold != 0.85 {
		t.Errorf("Threshold = %g, want %g", cfg.Threshold, 0.85)
	}
	if cfg.Mode != debate.ModeAdversarial {
		t.Errorf("Mode = %q, want %q", cfg.Mode, debate.ModeAdversarial)
	}
	if cfg.MaxRounds != 4 {
		t.Errorf("MaxRounds = %d, want %d", cfg.MaxRounds, 4)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want %d", cfg.Concurrency, 3)
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("LLMJURY_MODE", "courtroom")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for unknown LLMJURY_MODE")
	}
}

func TestLoad_ThresholdOutOfRange(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("LLMJURY_THRESHOLD", "1.5")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when Threshold > 1")
	}
}

func TestLoad_MaxRoundsTooLow(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("LLMJURY_MAX_ROUNDS", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when MaxRounds < 1")
	}
}

func TestLoad_InvalidThreshold(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("LLMJURY_THRESHOLD", "notanumber")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for non-numeric LLMJURY_THRESHOLD")
	}
}

func TestLoadDotEnv_SetsVarsFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	os.WriteFile(envFile, []byte("OPENROUTER_API_KEY=from-dotenv\nLLMJURY_THRESHOLD=0.6\n"), 0644)

	err := LoadDotEnv(envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "from-dotenv" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "from-dotenv")
	}
	if cfg.Threshold != 0.6 {
		t.Errorf("Threshold = %g, want %g", cfg.Threshold, 0.6)
	}
}

func TestLoadDotEnv_EnvVarsTakePrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "from-env")

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	os.WriteFile(envFile, []byte("OPENROUTER_API_KEY=from-dotenv\n"), 0644)

	err := LoadDotEnv(envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want %q (env var should take precedence)", cfg.APIKey, "from-env")
	}
}

func TestLoadDotEnv_MissingFileIsNotError(t *testing.T) {
	err := LoadDotEnv("/nonexistent/.env")
	if err != nil {
		t.Fatalf("missing .env file should not be an error, got: %v", err)
	}
}
