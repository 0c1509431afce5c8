// Package records implements the structured-record attachment engine: the
// analytic tool catalog over an arbitrary JSON record array, with fuzzy field
// resolution, duration coercion and record selection.
package records

import (
	"strconv"
	"strings"
)

// DurationToSeconds parses a duration string in ISO-8601 form (PT1H2M3S) or
// colon form (1:02:03, 2:03) into seconds. Returns false for anything else.
func DurationToSeconds(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, "PT") || strings.HasPrefix(s, "pt") {
		return parseISODuration(s[2:])
	}
	if strings.Contains(s, ":") {
		return parseColonDuration(s)
	}
	return 0, false
}

func parseISODuration(s string) (float64, bool) {
	var total float64
	num := ""
	seen := false
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			num += string(r)
		case r == 'H' || r == 'M' || r == 'S':
			if num == "" {
				return 0, false
			}
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, false
			}
			switch r {
			case 'H':
				total += v * 3600
			case 'M':
				total += v * 60
			case 'S':
				total += v
			}
			num = ""
			seen = true
		default:
			return 0, false
		}
	}
	if num != "" {
		return 0, false // trailing digits without a unit
	}
	return total, seen
}

func parseColonDuration(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}

// looksLikeDuration reports whether a field name suggests duration content,
// enabling the duration fallback when plain numeric coercion fails.
func looksLikeDuration(field string) bool {
	f := strings.ToLower(field)
	return strings.Contains(f, "duration") || strings.Contains(f, "length") ||
		strings.Contains(f, "runtime") || strings.Contains(f, "watch_time")
}
