package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/llm-jury/internal/classifier"
	"github.com/lorenzotomasdiez/llm-jury/internal/config"
	"github.com/lorenzotomasdiez/llm-jury/internal/debate"
	"github.com/lorenzotomasdiez/llm-jury/internal/judge"
	"github.com/lorenzotomasdiez/llm-jury/internal/jury"
	"github.com/lorenzotomasdiez/llm-jury/internal/llm"
	"github.com/lorenzotomasdiez/llm-jury/internal/openrouter"
	"github.com/lorenzotomasdiez/llm-jury/internal/output"
	"github.com/lorenzotomasdiez/llm-jury/internal/persona"
)

// defaultModel backs personas and judges that do not name a model.
const defaultModel = "openai/gpt-4o-mini"

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a JSONL dataset through the jury",
		RunE:  runClassify,
	}
	cmd.Flags().String("input", "", "Input JSONL file, one {\"text\": ...} record per line (required)")
	cmd.Flags().String("output", "", "Output JSONL file for verdicts (default: stdout)")
	cmd.Flags().String("classifier", "function", "Primary classifier: 'function' replays predicted_label/predicted_confidence from the input, 'llm:<model>' classifies live")
	cmd.Flags().String("personas", "content_moderation", "Built-in persona catalog")
	cmd.Flags().String("personas-file", "", "YAML file with a custom persona panel (overrides --personas)")
	cmd.Flags().String("labels", "safe,unsafe", "Comma-separated label set")
	cmd.Flags().String("judge", "llm", "Judge strategy: llm, majority, weighted, bayesian")
	cmd.Flags().String("judge-model", "", "Model for the LLM judge (default: first persona's model)")
	cmd.Flags().String("model", "", "Override the model for every persona")
	cmd.Flags().Float64("max-cost", 0, "Maximum debate spend per input in USD (0 = unlimited)")
	cmd.Flags().Int("concurrency", 10, "Inputs classified in parallel")
	cmd.Flags().Bool("hide-primary-result", false, "Do not show personas the primary classifier's label")
	cmd.Flags().Bool("hide-confidence", false, "Do not show personas the primary confidence")
	cmd.MarkFlagRequired("input")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	classifierSpec, _ := cmd.Flags().GetString("classifier")
	judgeName, _ := cmd.Flags().GetString("judge")
	judgeModel, _ := cmd.Flags().GetString("judge-model")
	modelOverride, _ := cmd.Flags().GetString("model")
	maxCost, _ := cmd.Flags().GetFloat64("max-cost")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	hidePrimary, _ := cmd.Flags().GetBool("hide-primary-result")
	hideConfidence, _ := cmd.Flags().GetBool("hide-confidence")

	threshold, mode, maxRounds, debateConcurrency, err := resolveDebateSettings(cmd)
	if err != nil {
		return err
	}
	labels := splitLabels(cmd)

	records, err := readRecordsFile(inputPath)
	if err != nil {
		return err
	}

	personas, err := loadPersonas(cmd, modelOverride)
	if err != nil {
		return err
	}

	client, err := buildClient(cmd, classifierSpec, judgeName, len(personas))
	if err != nil {
		return err
	}

	primary, err := buildClassifier(classifierSpec, client, labels, records)
	if err != nil {
		return err
	}

	strategy, err := buildJudge(judgeName, judgeModel, client, personas)
	if err != nil {
		return err
	}

	opts := jury.Options{
		Threshold: threshold,
		Judge:     strategy,
		DebateConfig: debate.Config{
			Mode:                 mode,
			MaxRounds:            maxRounds,
			IncludePrimaryResult: !hidePrimary,
			IncludeConfidence:    !hideConfidence,
		},
		DebateConcurrency: debateConcurrency,
	}
	if maxCost > 0 {
		opts.MaxDebateCostUSD = &maxCost
	}

	j, err := jury.New(primary, personas, client, opts)
	if err != nil {
		return err
	}
	j.OnEscalation = output.PrintEscalation

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}

	fmt.Printf("Classifying %d inputs (threshold %.2f, mode %s, judge %s)\n\n", len(texts), threshold, mode, judgeName)

	verdicts, batchErr := j.ClassifyBatch(ctx, texts, concurrency)

	if err := writeVerdictsFile(outputPath, verdicts); err != nil {
		return err
	}
	output.PrintStats(j.Stats())

	if batchErr != nil {
		return fmt.Errorf("some inputs failed: %w", batchErr)
	}
	return nil
}

// resolveDebateSettings layers the LLMJURY_* environment over the flag
// defaults: an env value applies unless the flag was set explicitly.
func resolveDebateSettings(cmd *cobra.Command) (float64, debate.Mode, int, int, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return 0, "", 0, 0, err
	}
	flags := cmd.Root().PersistentFlags()

	threshold := cfg.Threshold
	if flags.Changed("threshold") {
		threshold, _ = flags.GetFloat64("threshold")
		if threshold < 0 || threshold > 1 {
			return 0, "", 0, 0, fmt.Errorf("threshold must be in [0,1], got %g", threshold)
		}
	}

	mode := cfg.Mode
	if flags.Changed("mode") {
		modeName, _ := flags.GetString("mode")
		mode, err = debate.ParseMode(modeName)
		if err != nil {
			return 0, "", 0, 0, err
		}
	}

	maxRounds := cfg.MaxRounds
	if flags.Changed("max-rounds") {
		maxRounds, _ = flags.GetInt("max-rounds")
		if maxRounds < 1 {
			return 0, "", 0, 0, fmt.Errorf("max-rounds must be >= 1, got %d", maxRounds)
		}
	}

	debateConcurrency := cfg.Concurrency
	if flags.Changed("debate-concurrency") {
		debateConcurrency, _ = flags.GetInt("debate-concurrency")
		if debateConcurrency < 1 {
			return 0, "", 0, 0, fmt.Errorf("debate-concurrency must be >= 1, got %d", debateConcurrency)
		}
	}

	return threshold, mode, maxRounds, debateConcurrency, nil
}

func splitLabels(cmd *cobra.Command) []string {
	raw, _ := cmd.Flags().GetString("labels")
	var labels []string
	for _, label := range strings.Split(raw, ",") {
		label = strings.TrimSpace(label)
		if label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func readRecordsFile(path string) ([]output.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()
	records, err := output.ReadRecords(f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input %s holds no records", path)
	}
	return records, nil
}

func writeVerdictsFile(path string, verdicts []*judge.Verdict) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return output.WriteVerdicts(w, verdicts)
}

func loadPersonas(cmd *cobra.Command, modelOverride string) ([]persona.Persona, error) {
	personasFile, _ := cmd.Flags().GetString("personas-file")
	catalogName, _ := cmd.Flags().GetString("personas")

	var panel []persona.Persona
	var err error
	if personasFile != "" {
		panel, err = persona.LoadFile(personasFile)
	} else {
		panel, err = persona.Catalog(catalogName)
	}
	if err != nil {
		return nil, err
	}

	if modelOverride == "" {
		modelOverride = defaultModel
	}
	// Only fill personas that do not pin a model themselves.
	for i := range panel {
		if panel[i].Model == "" {
			panel[i].Model = modelOverride
		}
	}
	return panel, nil
}

// buildClient resolves the API key and creates the OpenRouter client.
// A replay classifier with a non-LLM judge and no personas needs no key.
func buildClient(cmd *cobra.Command, classifierSpec, judgeName string, personaCount int) (*openrouter.Client, error) {
	needsKey := personaCount > 0 || judgeName == "llm" || strings.HasPrefix(classifierSpec, "llm:")
	apiKey, _ := cmd.Root().PersistentFlags().GetString("api-key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		if !needsKey {
			return nil, nil
		}
		return nil, fmt.Errorf("API key required: set --api-key flag or OPENROUTER_API_KEY env var")
	}
	return openrouter.NewClient(apiKey), nil
}

func buildClassifier(spec string, client llm.Completer, labels []string, records []output.Record) (classifier.Classifier, error) {
	if model, ok := strings.CutPrefix(spec, "llm:"); ok {
		if model == "" {
			model = defaultModel
		}
		return classifier.NewLLMClassifier(client, model, labels), nil
	}
	if spec != "function" {
		return nil, fmt.Errorf("unknown classifier %q: use 'function' or 'llm:<model>'", spec)
	}

	predictions := make(map[string]output.Record, len(records))
	for _, record := range records {
		if record.PredictedLabel == "" {
			return nil, fmt.Errorf("classifier 'function' needs predicted_label on every record; %q has none", record.Text)
		}
		predictions[record.Text] = record
	}
	return classifier.NewFunctionClassifier(func(text string) (string, float64, error) {
		record, ok := predictions[text]
		if !ok {
			return "", 0, fmt.Errorf("no prediction for input %q", text)
		}
		return record.PredictedLabel, record.PredictedConfidence, nil
	}, labels), nil
}

func buildJudge(name, judgeModel string, client llm.Completer, personas []persona.Persona) (judge.Strategy, error) {
	switch name {
	case "majority":
		return judge.NewMajorityVote(), nil
	case "weighted":
		return judge.NewWeightedVote(), nil
	case "bayesian":
		return judge.NewBayesian(nil), nil
	case "llm":
		if judgeModel == "" {
			if len(personas) > 0 {
				judgeModel = personas[0].Model
			} else {
				judgeModel = defaultModel
			}
		}
		return judge.NewLLMJudge(client, judgeModel), nil
	default:
		return nil, fmt.Errorf("unknown judge %q: use llm, majority, weighted or bayesian", name)
	}
}
