package tabular

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Numeric coerces a raw cell value to a float64, tolerating thousands
// separators, currency signs and percent suffixes.
func Numeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ColumnValues extracts the numeric values of a column, skipping cells that
// fail coercion.
func ColumnValues(rows []map[string]string, column string) []float64 {
	var vals []float64
	for _, row := range rows {
		if v, ok := Numeric(row[column]); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// Stats holds descriptive statistics for one numeric column.
type Stats struct {
	Count  int
	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
}

// Describe computes descriptive statistics over a value set. Returns false
// when the set is empty.
func Describe(vals []float64) (Stats, bool) {
	if len(vals) == 0 {
		return Stats{}, false
	}

	st := Stats{Count: len(vals), Min: vals[0], Max: vals[0]}
	var sum float64
	for _, v := range vals {
		sum += v
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
	}
	st.Mean = sum / float64(len(vals))

	var sq float64
	for _, v := range vals {
		d := v - st.Mean
		sq += d * d
	}
	st.Std = math.Sqrt(sq / float64(len(vals)))

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		st.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		st.Median = sorted[mid]
	}

	return st, true
}

// Pearson computes the Pearson correlation coefficient between two equal
// length series. Returns false when fewer than two pairs exist or either
// series has zero variance.
func Pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, false
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// DatasetSummary produces a compact textual statistics block covering every
// numeric column, sized for direct inclusion in a model prompt rather than
// the full dataset. Deterministic: identical rows and headers always yield
// an identical block.
func DatasetSummary(rows []map[string]string, headers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows: %d\n", len(rows))

	for _, h := range headers {
		vals := ColumnValues(rows, h)
		// Columns where less than half the cells coerce are not numeric.
		if len(vals)*2 < len(rows) || len(vals) == 0 {
			continue
		}
		st, _ := Describe(vals)
		fmt.Fprintf(&b, "%s: count=%d mean=%s median=%s std=%s min=%s max=%s\n",
			h, st.Count, compact(st.Mean), compact(st.Median), compact(st.Std), compact(st.Min), compact(st.Max))
	}

	return strings.TrimRight(b.String(), "\n")
}

// compact trims trailing zeros so the summary stays prompt-sized.
func compact(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
