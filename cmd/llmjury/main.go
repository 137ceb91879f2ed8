package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/llm-jury/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "llmjury",
		Short: "Confidence-gated escalation for classification pipelines",
		Long: "Wraps a primary classifier behind a confidence threshold. Confident predictions " +
			"pass straight through; uncertain ones escalate to a multi-persona LLM debate whose " +
			"transcript a judge strategy turns into the final verdict.",
	}

	root.PersistentFlags().String("api-key", "", "OpenRouter API key (overrides OPENROUTER_API_KEY env var)")
	root.PersistentFlags().Float64("threshold", 0.7, "Confidence threshold below which inputs escalate (overrides LLMJURY_THRESHOLD)")
	root.PersistentFlags().String("mode", "deliberation", "Debate mode: independent, sequential, deliberation, adversarial (overrides LLMJURY_MODE)")
	root.PersistentFlags().Int("max-rounds", 2, "Maximum debate rounds in deliberation mode (overrides LLMJURY_MAX_ROUNDS)")
	root.PersistentFlags().Int("debate-concurrency", 5, "Parallel persona queries per debate round (overrides LLMJURY_CONCURRENCY)")

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newCalibrateCmd())
	root.AddCommand(newModelsCmd())
	return root
}

func main() {
	config.LoadDotEnv(".env")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
