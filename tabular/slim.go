package tabular

import (
	"strings"
)

// slimSizeCeiling bounds the slim projection to a practical prompt size.
const slimSizeCeiling = 12000

// SlimCSV re-serializes a reduced column subset back to delimited text for
// direct prompt inclusion. Textual/categorical and metric columns survive;
// high-cardinality noise columns (long free text, URLs) are dropped. Output
// is truncated at the row boundary once the size ceiling is reached.
func SlimCSV(rows []map[string]string, headers []string) string {
	kept := make([]string, 0, len(headers))
	for _, h := range headers {
		if keepColumn(rows, h) {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		kept = headers
	}

	var b strings.Builder
	b.WriteString(strings.Join(kept, ","))
	b.WriteByte('\n')

	for _, row := range rows {
		fields := make([]string, len(kept))
		for i, h := range kept {
			fields[i] = escapeField(row[h])
		}
		line := strings.Join(fields, ",")
		if b.Len()+len(line)+1 > slimSizeCeiling {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}

// keepColumn decides whether a column belongs in the slim projection.
// Numeric columns always stay. Text columns stay while their average cell
// length is short enough to be categorical or a label rather than prose.
func keepColumn(rows []map[string]string, column string) bool {
	if len(rows) == 0 {
		return true
	}

	numeric := len(ColumnValues(rows, column))
	if numeric*2 >= len(rows) {
		return true
	}

	var total int
	for _, row := range rows {
		v := row[column]
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return false
		}
		total += len(v)
	}
	return total/len(rows) <= 60
}

func escapeField(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// ResolveColumn resolves a requested column name against the header set
// case- and separator-insensitively: exact match wins, then both sides are
// normalized (lowercased, separators stripped) and compared. An unresolvable
// name passes through unchanged so the caller's error message stays
// actionable.
func ResolveColumn(headers []string, requested string) string {
	for _, h := range headers {
		if h == requested {
			return h
		}
	}
	want := normalizeName(requested)
	for _, h := range headers {
		if normalizeName(h) == want {
			return h
		}
	}
	return requested
}

func normalizeName(name string) string {
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
