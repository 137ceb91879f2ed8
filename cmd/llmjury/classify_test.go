package main

import (
	"os"
	"testing"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
)

func clearJuryEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLMJURY_THRESHOLD",
		"LLMJURY_MODE",
		"LLMJURY_MAX_ROUNDS",
		"LLMJURY_CONCURRENCY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func classifyCmdForTest(t *testing.T) *cobra.Command {
	t.Helper()
	root := newRootCmd()
	for _, sub := range root.Commands() {
		if sub.Name() == "classify" {
			return sub
		}
	}
	t.Fatal("classify command not registered")
	return nil
}

func TestResolveDebateSettingsDefaults(t *testing.T) {
	clearJuryEnv(t)
	cmd := classifyCmdForTest(t)

	threshold, mode, maxRounds, debateConcurrency, err := resolveDebateSettings(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if threshold != 0.7 {
		t.Errorf("threshold = %g, want %g", threshold, 0.7)
	}
	if mode != debate.ModeDeliberation {
		t.Errorf("mode = %q, want %q", mode, debate.ModeDeliberation)
	}
	if maxRounds != 2 {
		t.Errorf("maxRounds = %d, want %d", maxRounds, 2)
	}
	if debateConcurrency != debate.DefaultConcurrency {
		t.Errorf("debateConcurrency = %d, want %d", debateConcurrency, debate.DefaultConcurrency)
	}
}

func TestResolveDebateSettingsReadsEnv(t *testing.T) {
	clearJuryEnv(t)
	t.Setenv("LLMJURY_THRESHOLD", "0.9")
	t.Setenv("LLMJURY_MODE", "independent")
	t.Setenv("LLMJURY_MAX_ROUNDS", "4")
	t.Setenv("LLMJURY_CONCURRENCY", "3")
	cmd := classifyCmdForTest(t)

	threshold, mode, maxRounds, debateConcurrency, err := resolveDebateSettings(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if threshold != 0.9 {
		t.Errorf("threshold = %g, want %g", threshold, 0.9)
	}
	if mode != debate.ModeIndependent {
		t.Errorf("mode = %q, want %q", mode, debate.ModeIndependent)
	}
	if maxRounds != 4 {
		t.Errorf("maxRounds = %d, want %d", maxRounds, 4)
	}
	if debateConcurrency != 3 {
		t.Errorf("debateConcurrency = %d, want %d", debateConcurrency, 3)
	}
}

func TestResolveDebateSettingsFlagsOverrideEnv(t *testing.T) {
	clearJuryEnv(t)
	t.Setenv("LLMJURY_THRESHOLD", "0.9")
	t.Setenv("LLMJURY_MODE", "independent")
	cmd := classifyCmdForTest(t)

	flags := cmd.Root().PersistentFlags()
	if err := flags.Set("threshold", "0.3"); err != nil {
		t.Fatalf("setting threshold flag: %v", err)
	}
	if err := flags.Set("mode", "adversarial"); err != nil {
		t.Fatalf("setting mode flag: %v", err)
	}

	threshold, mode, _, _, err := resolveDebateSettings(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if threshold != 0.3 {
		t.Errorf("threshold = %g, want flag value %g", threshold, 0.3)
	}
	if mode != debate.ModeAdversarial {
		t.Errorf("mode = %q, want flag value %q", mode, debate.ModeAdversarial)
	}
}

func TestResolveDebateSettingsRejectsBadEnv(t *testing.T) {
	clearJuryEnv(t)
	t.Setenv("LLMJURY_MODE", "courtroom")
	cmd := classifyCmdForTest(t)

	if _, _, _, _, err := resolveDebateSettings(cmd); err == nil {
		t.Fatal("expected error for unknown LLMJURY_MODE")
	}
}

func TestResolveDebateSettingsRejectsBadFlag(t *testing.T) {
	clearJuryEnv(t)
	cmd := classifyCmdForTest(t)
	if err := cmd.Root().PersistentFlags().Set("threshold", "1.5"); err != nil {
		t.Fatalf("setting threshold flag: %v", err)
	}

	if _, _, _, _, err := resolveDebateSettings(cmd); err == nil {
		t.Fatal("expected error for out-of-range threshold flag")
	}
}
