package output

import (
	"fmt"

	"github.com/lorenzotomasdiez/llm-jury/internal/calibration"
	"github.com/lorenzotomasdiez/llm-jury/internal/classifier"
	"github.com/lorenzotomasdiez/llm-jury/internal/judge"
	"github.com/lorenzotomasdiez/llm-jury/internal/jury"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// Colorize wraps s with an ANSI color code and reset.
func Colorize(color, s string) string { return color + s + ansiReset }

// Bold wraps s with ANSI bold and reset.
func Bold(s string) string { return ansiBold + s + ansiReset }

// PrintEscalation prints an escalation notice for one input.
func PrintEscalation(text string, primary *classifier.Result) {
	fmt.Printf("%s %s (%.2f): %s\n",
		Colorize(ansiBold+ansiYellow, "[escalated]"),
		primary.Label,
		primary.Confidence,
		truncate(text, 80),
	)
}

// PrintVerdict prints a formatted verdict to stdout.
func PrintVerdict(verdict *judge.Verdict) {
	path := "fast path"
	pathColor := ansiGreen
	if verdict.WasEscalated {
		path = "escalated"
		pathColor = ansiRed
	}
	fmt.Printf("%s %s (%.2f) via %s\n",
		Colorize(ansiBold+pathColor, "["+path+"]"),
		Bold(verdict.Label),
		verdict.Confidence,
		verdict.JudgeStrategy,
	)
	if verdict.WasEscalated && verdict.DebateTranscript != nil {
		fmt.Printf("  rounds: %d, cost: $%.4f\n",
			len(verdict.DebateTranscript.Rounds),
			verdict.DebateTranscript.TotalCostUSD,
		)
	}
}

// PrintStats prints the fast-path/escalation summary.
func PrintStats(stats jury.Stats) {
	fmt.Printf("\n%s\n", Colorize(ansiBold+ansiCyan, "=== Jury Stats ==="))
	fmt.Printf("Total: %d\n", stats.Total)
	fmt.Printf("Fast path: %d\n", stats.FastPath)
	fmt.Printf("Escalated: %s\n", Colorize(ansiYellow, fmt.Sprintf("%d (%.1f%%)", stats.Escalated, stats.EscalationRate()*100)))
	fmt.Printf("Savings vs always escalating: %.1f%%\n", stats.CostSavingsVsAlwaysEscalate()*100)
}

// PrintCalibration prints a threshold sweep table.
func PrintCalibration(report *calibration.Report) {
	fmt.Printf("\n%s\n", Colorize(ansiBold+ansiCyan, "=== Threshold Calibration ==="))
	fmt.Printf("%-10s %-10s %-12s %s\n", "threshold", "accuracy", "escalation", "cost")
	for _, row := range report.Rows {
		line := fmt.Sprintf("%-10.2f %-10.3f %-12.3f %.2f", row.Threshold, row.Accuracy, row.EscalationRate, row.TotalCost)
		if row.Threshold == report.BestThreshold {
			line = Colorize(ansiBold+ansiGreen, line+"  <- best")
		}
		fmt.Println(line)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
