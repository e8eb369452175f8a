package domain

import (
	"strconv"
	"strings"
)

// Options holds caller-supplied processing hints
type Options map[string]any

// IsVoiceMessage reports whether the caller flagged the upload as a voice message.
// Accepts bool, numeric 1 and the strings "true"/"1"/"yes".
func (o Options) IsVoiceMessage() bool {
	v, ok := o[OptionIsVoiceMessage]
	if !ok || v == nil {
		return false
	}

	switch b := v.(type) {
	case bool:
		return b
	case int:
		return b == 1
	case int64:
		return b == 1
	case float64:
		return b == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}

// DurationHint returns the caller-declared duration in seconds, or nil when absent or unparsable
func (o Options) DurationHint() *float64 {
	for _, key := range []string{OptionDurationHint, OptionDuration} {
		v, ok := o[key]
		if !ok || v == nil {
			continue
		}
		if d, ok := toFloat(v); ok && d >= 0 {
			return &d
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
