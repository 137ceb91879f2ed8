package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
)

type Config struct {
	APIKey      string
	Threshold   float64
	Mode        debate.Mode
	MaxRounds   int
	Concurrency int
}

// Load reads the full configuration and requires an API key.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("config: OPENROUTER_API_KEY is required")
	}
	return cfg, nil
}

// FromEnv reads and validates the jury settings from the environment.
// The API key is carried through as-is; callers that can run without
// one (offline replay, flag-supplied keys) use this instead of Load.
func FromEnv() (*Config, error) {
	threshold, err := envFloat("LLMJURY_THRESHOLD", 0.7)
	if err != nil {
		return nil, err
	}

	modeName := os.Getenv("LLMJURY_MODE")
	if modeName == "" {
		modeName = string(debate.ModeDeliberation)
	}
	mode, err := debate.ParseMode(modeName)
	if err != nil {
		return nil, fmt.Errorf("config: invalid LLMJURY_MODE: %w", err)
	}

	maxRounds, err := envInt("LLMJURY_MAX_ROUNDS", 2)
	if err != nil {
		return nil, err
	}

	concurrency, err := envInt("LLMJURY_CONCURRENCY", debate.DefaultConcurrency)
	if err != nil {
		return nil, err
	}

	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("config: Threshold must be in [0,1], got %g", threshold)
	}
	if maxRounds < 1 {
		return nil, fmt.Errorf("config: MaxRounds must be >= 1, got %d", maxRounds)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("config: Concurrency must be >= 1, got %d", concurrency)
	}

	return &Config{
		APIKey:      os.Getenv("OPENROUTER_API_KEY"),
		Threshold:   threshold,
		Mode:        mode,
		MaxRounds:   maxRounds,
		Concurrency: concurrency,
	}, nil
}

func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: opening .env: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
	return scanner.Err()
}

func envInt(key string, defaultVal int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, s, err)
	}
	return v, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, s, err)
	}
	return v, nil
}
