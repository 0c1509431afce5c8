// Package tabular implements the delimited-table attachment engine: parsing
// raw CSV text into typed rows, deriving prompt-sized summaries and slim
// projections, and executing the fixed analytic tool catalog against the
// in-memory row set.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"datui/model"
)

// ErrEmptyInput is returned when the attachment text has no non-blank lines.
// Ingestion surfaces it and simply does not install the context; it never
// affects an in-flight turn.
var ErrEmptyInput = errors.New("attachment contains no data")

// ParseRows parses raw delimited text into headers and rows. Header fields
// are trimmed and unquoted. Every row maps header→raw string value; short
// rows simply omit the missing trailing fields. Every non-blank line after
// the header produces exactly one row.
func ParseRows(text string) ([]string, []map[string]string, error) {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return nil, nil, ErrEmptyInput
	}

	headers, err := splitLine(lines[0])
	if err != nil {
		return nil, nil, fmt.Errorf("unreadable header line: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields, err := splitLine(line)
		if err != nil {
			// A malformed row still counts as one row; keep the raw
			// line under the first header so nothing silently drops.
			fields = []string{line}
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				row[h] = strings.TrimSpace(fields[i])
			}
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}

// Load parses text and builds a fully derived table context: parsed rows,
// engagement enrichment, numeric summary and slim projection.
func Load(name, text string) (*model.TableContext, error) {
	headers, rows, err := ParseRows(text)
	if err != nil {
		return nil, err
	}

	headers = EnrichWithEngagement(rows, headers)

	return &model.TableContext{
		Name:    name,
		Headers: headers,
		Rows:    rows,
		Summary: DatasetSummary(rows, headers),
		SlimCSV: SlimCSV(rows, headers),
		Raw:     text,
		RawSize: len(text),
	}, nil
}

func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(strings.TrimSuffix(line, "\r")) != "" {
			out = append(out, strings.TrimSuffix(line, "\r"))
		}
	}
	return out
}

// splitLine parses a single CSV line, honoring quoting.
func splitLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}

// engagement signal columns and their weights. Comments and shares cost the
// viewer more than a like, so they weigh heavier.
var engagementWeights = []struct {
	column string
	weight float64
}{
	{"likes", 1},
	{"comments", 2},
	{"shares", 3},
}

// EnrichWithEngagement appends a derived engagement_score column when
// recognizable count columns exist: a weighted sum of likes/comments/shares
// per thousand views. Returns the original headers unchanged when fewer than
// two signal columns are present. Deterministic and side-effect-free apart
// from the appended row values.
func EnrichWithEngagement(rows []map[string]string, headers []string) []string {
	views := ResolveColumn(headers, "views")
	if !hasColumn(headers, views) {
		views = ResolveColumn(headers, "view_count")
	}
	if !hasColumn(headers, views) {
		return headers
	}

	type signal struct {
		column string
		weight float64
	}
	var signals []signal
	for _, w := range engagementWeights {
		col := ResolveColumn(headers, w.column)
		if hasColumn(headers, col) {
			signals = append(signals, signal{col, w.weight})
		}
	}
	if len(signals) < 2 {
		return headers
	}

	const derived = "engagement_score"
	for _, row := range rows {
		v, ok := Numeric(row[views])
		if !ok || v == 0 {
			continue
		}
		var score float64
		for _, s := range signals {
			if n, ok := Numeric(row[s.column]); ok {
				score += n * s.weight
			}
		}
		row[derived] = fmt.Sprintf("%.2f", score/v*1000)
	}

	return append(headers, derived)
}

func hasColumn(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
