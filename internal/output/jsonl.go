package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lorenzotomasdiez/llm-jury/internal/judge"
)

// Record is one line of a JSONL dataset. Text is required; Label is
// the gold label used for calibration. PredictedLabel and
// PredictedConfidence carry precomputed predictions for replaying an
// offline classifier.
type Record struct {
	Text                string  `json:"text"`
	Label               string  `json:"label,omitempty"`
	PredictedLabel      string  `json:"predicted_label,omitempty"`
	PredictedConfidence float64 `json:"predicted_confidence,omitempty"`
}

// ReadRecords parses a JSONL stream. Blank lines are skipped; a record
// without text is an error.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("output: line %d: %w", line, err)
		}
		if record.Text == "" {
			return nil, fmt.Errorf("output: line %d: missing text field", line)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("output: reading records: %w", err)
	}
	return records, nil
}

// WriteVerdicts writes one verdict per line as JSON. Nil verdicts
// (failed inputs) are written as JSON null so line numbers keep lining
// up with the input.
func WriteVerdicts(w io.Writer, verdicts []*judge.Verdict) error {
	enc := json.NewEncoder(w)
	for i, verdict := range verdicts {
		if err := enc.Encode(verdict); err != nil {
			return fmt.Errorf("output: verdict %d: %w", i, err)
		}
	}
	return nil
}
