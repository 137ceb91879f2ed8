package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ParseObject extracts a JSON object from free-form model output. It tries
// a direct parse, then the contents of a markdown code fence, then the span
// from the first "{" to the last "}". Returns false when no JSON object can
// be recovered; JSON that parses to a non-object also returns false.
func ParseObject(raw string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(raw)

	if obj, ok := parseObjectStrict(trimmed); ok {
		return obj, true
	}

	if matches := codeBlockRe.FindStringSubmatch(raw); len(matches) > 1 {
		if obj, ok := parseObjectStrict(strings.TrimSpace(matches[1])); ok {
			return obj, true
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if obj, ok := parseObjectStrict(raw[start : end+1]); ok {
			return obj, true
		}
	}

	return nil, false
}

func parseObjectStrict(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// StringValue coerces a decoded JSON value to a string. Non-string values
// yield the empty string.
func StringValue(v any) string {
	s, _ := v.(string)
	return s
}

// FloatValue coerces a decoded JSON value to a float64, accepting numbers
// and numeric strings. Anything else yields 0.
func FloatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// StringList coerces a decoded JSON array to a list of its string elements.
func StringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
