package records

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"datui/model"
)

// ErrEmptyInput is returned when the attachment is not a non-empty JSON
// array of objects.
var ErrEmptyInput = errors.New("attachment contains no records")

// Load parses a JSON array or NDJSON attachment into a record context.
// The field universe is the keys of the first record, in sorted order for
// determinism.
func Load(name, text string) (*model.RecordContext, error) {
	var recs []map[string]any
	if err := json.Unmarshal([]byte(text), &recs); err != nil {
		var ndErr error
		if recs, ndErr = loadNDJSON(text); ndErr != nil {
			return nil, errors.Join(ErrEmptyInput, err)
		}
	}
	if len(recs) == 0 {
		return nil, ErrEmptyInput
	}

	fields := make([]string, 0, len(recs[0]))
	for k := range recs[0] {
		fields = append(fields, k)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyInput
	}
	sort.Strings(fields)

	return &model.RecordContext{Name: name, Fields: fields, Records: recs}, nil
}

// loadNDJSON reads one JSON object per non-blank line. A single bad line
// fails the whole load so truncated exports are not silently shortened.
func loadNDJSON(text string) ([]map[string]any, error) {
	var recs []map[string]any
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ResolveField resolves a requested field name against the field universe:
// exact match first, then both sides normalized (lowercase, separators
// stripped). Unresolved names pass through unchanged so error messages stay
// actionable.
func ResolveField(fields []string, requested string) string {
	for _, f := range fields {
		if f == requested {
			return f
		}
	}
	want := normalizeFieldName(requested)
	for _, f := range fields {
		if normalizeFieldName(f) == want {
			return f
		}
	}
	return requested
}

func normalizeFieldName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case '_', '-', ' ', '.':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// numericValue coerces a record field value to float64. Strings fall back to
// the duration parser when the field name suggests a duration.
func numericValue(field string, v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		if looksLikeDuration(field) {
			return DurationToSeconds(t)
		}
		return 0, false
	default:
		return 0, false
	}
}

// stringValue renders a record field as text for matching and display.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
