package calibration

import (
	"context"
	"fmt"

	"github.com/lorenzotomasdiez/llm-jury/internal/classifier"
	"github.com/lorenzotomasdiez/llm-jury/internal/jury"
)

// Defaults for the cost model. An uncaught misclassification is assumed
// to cost two orders of magnitude more than one debate.
const (
	DefaultErrorCost      = 10.0
	DefaultEscalationCost = 0.05
)

// Row is the simulated outcome for one candidate threshold. Escalated
// inputs count as correct: the debate is assumed to catch what the
// primary classifier would have missed.
type Row struct {
	Threshold      float64 `json:"threshold"`
	Accuracy       float64 `json:"accuracy"`
	EscalationRate float64 `json:"escalation_rate"`
	TotalCost      float64 `json:"total_cost"`
}

// Report holds a full sweep plus the winning threshold.
type Report struct {
	BestThreshold float64 `json:"best_threshold"`
	Rows          []Row   `json:"rows"`
}

// Options tunes the cost model and the candidate grid.
type Options struct {
	// ErrorCost prices one misclassification on the fast path.
	// 0 means DefaultErrorCost.
	ErrorCost float64
	// EscalationCost prices one debate. 0 means DefaultEscalationCost.
	EscalationCost float64
	// Thresholds is the candidate grid. Empty means 0.50 through 0.95
	// in steps of 0.05.
	Thresholds []float64
}

// Calibrator sweeps candidate thresholds over a labeled dataset and
// installs the cheapest one on the jury.
type Calibrator struct {
	jury           *jury.Jury
	errorCost      float64
	escalationCost float64
	thresholds     []float64
	report         *Report
}

// New creates a calibrator bound to a jury.
func New(j *jury.Jury, opts Options) *Calibrator {
	errorCost := opts.ErrorCost
	if errorCost == 0 {
		errorCost = DefaultErrorCost
	}
	escalationCost := opts.EscalationCost
	if escalationCost == 0 {
		escalationCost = DefaultEscalationCost
	}
	thresholds := opts.Thresholds
	if len(thresholds) == 0 {
		thresholds = defaultGrid()
	}
	return &Calibrator{
		jury:           j,
		errorCost:      errorCost,
		escalationCost: escalationCost,
		thresholds:     thresholds,
	}
}

// Calibrate classifies each text once with the jury's primary
// classifier, simulates every candidate threshold against the cached
// results, installs the cheapest threshold on the jury, and returns the
// sweep. Ties go to the earlier candidate in the grid.
func (c *Calibrator) Calibrate(ctx context.Context, texts, labels []string) (*Report, error) {
	if len(texts) != len(labels) {
		return nil, fmt.Errorf("calibration: %d texts but %d labels", len(texts), len(labels))
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("calibration: empty dataset")
	}

	primary := c.jury.Classifier()
	results := make([]*classifier.Result, len(texts))
	for i, text := range texts {
		result, err := primary.Classify(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("calibration: input %d: %w", i, err)
		}
		results[i] = result
	}

	report := &Report{Rows: make([]Row, 0, len(c.thresholds))}
	best := -1
	for _, threshold := range c.thresholds {
		row := c.simulate(threshold, results, labels)
		report.Rows = append(report.Rows, row)
		if best == -1 || row.TotalCost < report.Rows[best].TotalCost {
			best = len(report.Rows) - 1
		}
	}
	report.BestThreshold = report.Rows[best].Threshold

	c.jury.SetThreshold(report.BestThreshold)
	c.report = report
	return report, nil
}

// Report returns the most recent sweep, or nil before any Calibrate.
func (c *Calibrator) Report() *Report {
	return c.report
}

// simulate replays cached primary results under one threshold.
// Escalations are assumed correct; fast-path mistakes pay the error
// cost, escalations pay the debate cost.
func (c *Calibrator) simulate(threshold float64, results []*classifier.Result, labels []string) Row {
	total := len(results)
	correct := 0
	escalated := 0
	for i, result := range results {
		if result.Confidence < threshold {
			escalated++
			continue
		}
		if result.Label == labels[i] {
			correct++
		}
	}
	mistakes := total - correct - escalated
	return Row{
		Threshold:      threshold,
		Accuracy:       float64(correct+escalated) / float64(total),
		EscalationRate: float64(escalated) / float64(total),
		TotalCost:      float64(mistakes)*c.errorCost + float64(escalated)*c.escalationCost,
	}
}

func defaultGrid() []float64 {
	grid := make([]float64, 0, 10)
	for i := 0; i < 10; i++ {
		grid = append(grid, 0.50+0.05*float64(i))
	}
	return grid
}
