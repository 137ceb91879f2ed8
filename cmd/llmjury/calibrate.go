package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/llm-jury/internal/calibration"
	"github.com/lorenzotomasdiez/llm-jury/internal/judge"
	"github.com/lorenzotomasdiez/llm-jury/internal/jury"
	"github.com/lorenzotomasdiez/llm-jury/internal/output"
)

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Sweep confidence thresholds over a labeled dataset",
		Long: "Classifies each input once with the primary classifier, then simulates every " +
			"candidate threshold to find the cheapest trade-off between misclassifications " +
			"and escalations. Records need a gold 'label' field.",
		RunE: runCalibrate,
	}
	cmd.Flags().String("input", "", "Labeled JSONL file (required)")
	cmd.Flags().String("classifier", "function", "Primary classifier: 'function' or 'llm:<model>'")
	cmd.Flags().String("labels", "safe,unsafe", "Comma-separated label set")
	cmd.Flags().Float64("error-cost", calibration.DefaultErrorCost, "Cost of one fast-path misclassification")
	cmd.Flags().Float64("escalation-cost", calibration.DefaultEscalationCost, "Cost of one debate")
	cmd.Flags().String("thresholds", "", "Comma-separated candidate thresholds (default: 0.50-0.95 step 0.05)")
	cmd.MarkFlagRequired("input")
	return cmd
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	classifierSpec, _ := cmd.Flags().GetString("classifier")
	errorCost, _ := cmd.Flags().GetFloat64("error-cost")
	escalationCost, _ := cmd.Flags().GetFloat64("escalation-cost")
	labels := splitLabels(cmd)

	records, err := readRecordsFile(inputPath)
	if err != nil {
		return err
	}

	texts := make([]string, len(records))
	golds := make([]string, len(records))
	for i, record := range records {
		if record.Label == "" {
			return fmt.Errorf("calibration needs a gold label on every record; %q has none", record.Text)
		}
		texts[i] = record.Text
		golds[i] = record.Label
	}

	thresholds, err := parseThresholds(cmd)
	if err != nil {
		return err
	}

	client, err := buildClient(cmd, classifierSpec, "", 0)
	if err != nil {
		return err
	}
	primary, err := buildClassifier(classifierSpec, client, labels, records)
	if err != nil {
		return err
	}

	// Calibration never escalates, so the jury runs without a panel.
	j, err := jury.New(primary, nil, client, jury.Options{Judge: judge.MajorityVote{}})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	calibrator := calibration.New(j, calibration.Options{
		ErrorCost:      errorCost,
		EscalationCost: escalationCost,
		Thresholds:     thresholds,
	})
	report, err := calibrator.Calibrate(ctx, texts, golds)
	if err != nil {
		return err
	}

	output.PrintCalibration(report)
	fmt.Printf("\nBest threshold: %.2f\n", report.BestThreshold)
	return nil
}

func parseThresholds(cmd *cobra.Command) ([]float64, error) {
	raw, _ := cmd.Flags().GetString("thresholds")
	if raw == "" {
		return nil, nil
	}
	var thresholds []float64
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %q: %w", field, err)
		}
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("threshold %g out of range [0,1]", v)
		}
		thresholds = append(thresholds, v)
	}
	return thresholds, nil
}
