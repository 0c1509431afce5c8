package tabular

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"datui/model"
)

// Catalog returns the fixed analytic tool set advertised to the model in
// tabular tool mode. Tool names are unique and do not collide with the
// record or image catalogs, so catalogs may be concatenated freely.
func Catalog() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "filter_rows",
			Description: "Filter the dataset rows by a predicate on one column and return the matching rows with their count.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"column": map[string]any{"type": "string", "description": "Column to test"},
					"op":     map[string]any{"type": "string", "description": "Comparison operator", "enum": []any{"eq", "ne", "gt", "lt", "ge", "le", "contains"}},
					"value":  map[string]any{"type": "string", "description": "Value to compare against"},
				},
				Required: []string{"column", "op", "value"},
			},
		},
		{
			Name:        "aggregate_column",
			Description: "Aggregate a numeric column (sum, mean, count, min or max), optionally grouped by another column.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"column":   map[string]any{"type": "string", "description": "Numeric column to aggregate"},
					"op":       map[string]any{"type": "string", "description": "Aggregation", "enum": []any{"sum", "mean", "count", "min", "max"}},
					"group_by": map[string]any{"type": "string", "description": "Optional column to group by"},
				},
				Required: []string{"column", "op"},
			},
		},
		{
			Name:        "top_n",
			Description: "Return the N rows with the highest (or lowest) values in a column.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"column":    map[string]any{"type": "string", "description": "Column to rank by"},
					"n":         map[string]any{"type": "number", "description": "How many rows to return"},
					"direction": map[string]any{"type": "string", "description": "top for highest, bottom for lowest", "enum": []any{"top", "bottom"}},
				},
				Required: []string{"column", "n"},
			},
		},
		{
			Name:        "correlate",
			Description: "Compute the Pearson correlation coefficient between two numeric columns.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"column_x": map[string]any{"type": "string", "description": "First numeric column"},
					"column_y": map[string]any{"type": "string", "description": "Second numeric column"},
				},
				Required: []string{"column_x", "column_y"},
			},
		},
		{
			Name:        "chart_column",
			Description: "Build a bar or line chart of a numeric column for the user, labeled by another column.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"column":       map[string]any{"type": "string", "description": "Numeric column to chart"},
					"kind":         map[string]any{"type": "string", "description": "Chart kind", "enum": []any{"bar", "line"}},
					"label_column": map[string]any{"type": "string", "description": "Optional column providing point labels"},
					"limit":        map[string]any{"type": "number", "description": "Max points to chart (default 20)"},
				},
				Required: []string{"column"},
			},
		},
	}
}

// Engine executes the tabular tool catalog against one table context.
type Engine struct {
	Table *model.TableContext
}

// Catalog implements the turn engine contract.
func (e Engine) Catalog() []mcptypes.Tool { return Catalog() }

// Execute runs one tool against the table. User-input failures (unknown
// tool, unresolvable column, empty data) come back as error results for the
// model to recover from; Execute never panics on user input. The context is
// unused here: every tabular tool is a pure in-memory computation.
func (e Engine) Execute(_ context.Context, name string, args map[string]any) model.ToolResult {
	if e.Table == nil || len(e.Table.Rows) == 0 {
		return model.ErrorResult("no rows loaded; ask the user to attach a CSV file first")
	}

	switch name {
	case "filter_rows":
		return e.filterRows(args)
	case "aggregate_column":
		return e.aggregate(args)
	case "top_n":
		return e.topN(args)
	case "correlate":
		return e.correlate(args)
	case "chart_column":
		return e.chart(args)
	default:
		return model.ErrorResult(fmt.Sprintf("unknown tool %q; available: filter_rows, aggregate_column, top_n, correlate, chart_column", name))
	}
}

// resolve maps a requested column onto a real header or reports the
// alternatives.
func (e Engine) resolve(requested string) (string, *model.ToolResult) {
	col := ResolveColumn(e.Table.Headers, requested)
	for _, h := range e.Table.Headers {
		if h == col {
			return col, nil
		}
	}
	res := model.ErrorResult(fmt.Sprintf("column %q not found; available columns: %s",
		requested, strings.Join(e.Table.Headers, ", ")))
	return "", &res
}

const maxReturnedRows = 20

func (e Engine) filterRows(args map[string]any) model.ToolResult {
	col, errRes := e.resolve(argString(args, "column"))
	if errRes != nil {
		return *errRes
	}
	op := argString(args, "op")
	value := argString(args, "value")

	var matched []map[string]string
	for _, row := range e.Table.Rows {
		if matchPredicate(row[col], op, value) {
			matched = append(matched, row)
		}
	}

	out := map[string]any{"count": len(matched)}
	limit := len(matched)
	if limit > maxReturnedRows {
		limit = maxReturnedRows
		out["truncated"] = true
	}
	rows := make([]map[string]string, limit)
	copy(rows, matched[:limit])
	out["rows"] = rows
	return model.ValueResult(out)
}

func matchPredicate(cell, op, value string) bool {
	cv, cok := Numeric(cell)
	vv, vok := Numeric(value)
	numeric := cok && vok

	switch op {
	case "eq":
		if numeric {
			return cv == vv
		}
		return strings.EqualFold(cell, value)
	case "ne":
		if numeric {
			return cv != vv
		}
		return !strings.EqualFold(cell, value)
	case "gt":
		return numeric && cv > vv
	case "lt":
		return numeric && cv < vv
	case "ge":
		return numeric && cv >= vv
	case "le":
		return numeric && cv <= vv
	case "contains":
		return strings.Contains(strings.ToLower(cell), strings.ToLower(value))
	default:
		return false
	}
}

func (e Engine) aggregate(args map[string]any) model.ToolResult {
	col, errRes := e.resolve(argString(args, "column"))
	if errRes != nil {
		return *errRes
	}
	op := argString(args, "op")

	groupBy := argString(args, "group_by")
	if groupBy == "" {
		vals := ColumnValues(e.Table.Rows, col)
		v, ok := aggregateOp(vals, op)
		if !ok {
			return model.ErrorResult(fmt.Sprintf("column %q has no numeric values to %s", col, op))
		}
		return model.ValueResult(map[string]any{"column": col, "op": op, "value": v})
	}

	gcol, errRes := e.resolve(groupBy)
	if errRes != nil {
		return *errRes
	}

	buckets := map[string][]float64{}
	var order []string
	for _, row := range e.Table.Rows {
		key := row[gcol]
		if _, seen := buckets[key]; !seen {
			buckets[key] = nil
			order = append(order, key)
		}
		if v, ok := Numeric(row[col]); ok {
			buckets[key] = append(buckets[key], v)
		}
	}

	groups := make(map[string]any, len(order))
	anyNumeric := false
	for _, key := range order {
		if v, ok := aggregateOp(buckets[key], op); ok {
			groups[key] = v
			anyNumeric = true
		}
	}
	if !anyNumeric {
		return model.ErrorResult(fmt.Sprintf("column %q has no numeric values to %s", col, op))
	}
	return model.ValueResult(map[string]any{"column": col, "op": op, "group_by": gcol, "groups": groups})
}

func aggregateOp(vals []float64, op string) (float64, bool) {
	if op == "count" {
		return float64(len(vals)), true
	}
	st, ok := Describe(vals)
	if !ok {
		return 0, false
	}
	switch op {
	case "sum":
		return st.Mean * float64(st.Count), true
	case "mean":
		return st.Mean, true
	case "min":
		return st.Min, true
	case "max":
		return st.Max, true
	default:
		return 0, false
	}
}

func (e Engine) topN(args map[string]any) model.ToolResult {
	col, errRes := e.resolve(argString(args, "column"))
	if errRes != nil {
		return *errRes
	}
	n := int(argNumber(args, "n", 5))
	if n <= 0 {
		n = 5
	}
	bottom := argString(args, "direction") == "bottom"

	type ranked struct {
		row map[string]string
		val float64
	}
	var rankable []ranked
	for _, row := range e.Table.Rows {
		if v, ok := Numeric(row[col]); ok {
			rankable = append(rankable, ranked{row, v})
		}
	}
	if len(rankable) == 0 {
		return model.ErrorResult(fmt.Sprintf("column %q has no numeric values to rank by", col))
	}

	sort.SliceStable(rankable, func(i, j int) bool {
		if bottom {
			return rankable[i].val < rankable[j].val
		}
		return rankable[i].val > rankable[j].val
	})
	if n > len(rankable) {
		n = len(rankable)
	}

	rows := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		rows[i] = rankable[i].row
	}
	return model.ValueResult(map[string]any{"column": col, "n": n, "rows": rows})
}

func (e Engine) correlate(args map[string]any) model.ToolResult {
	colX, errRes := e.resolve(argString(args, "column_x"))
	if errRes != nil {
		return *errRes
	}
	colY, errRes := e.resolve(argString(args, "column_y"))
	if errRes != nil {
		return *errRes
	}

	// Pair values row-wise so both series stay aligned.
	var xs, ys []float64
	for _, row := range e.Table.Rows {
		x, okX := Numeric(row[colX])
		y, okY := Numeric(row[colY])
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}

	r, ok := Pearson(xs, ys)
	if !ok {
		return model.ErrorResult(fmt.Sprintf("not enough paired numeric values in %q and %q to correlate", colX, colY))
	}
	return model.ValueResult(map[string]any{"column_x": colX, "column_y": colY, "pearson_r": r, "pairs": len(xs)})
}

func (e Engine) chart(args map[string]any) model.ToolResult {
	col, errRes := e.resolve(argString(args, "column"))
	if errRes != nil {
		return *errRes
	}
	kind := argString(args, "kind")
	if kind == "" {
		kind = "bar"
	}
	limit := int(argNumber(args, "limit", 20))
	if limit <= 0 {
		limit = 20
	}

	labelCol := argString(args, "label_column")
	if labelCol != "" {
		resolved, errRes := e.resolve(labelCol)
		if errRes != nil {
			return *errRes
		}
		labelCol = resolved
	}

	var points []model.ChartPoint
	for i, row := range e.Table.Rows {
		v, ok := Numeric(row[col])
		if !ok {
			continue
		}
		label := fmt.Sprintf("row %d", i+1)
		if labelCol != "" {
			label = row[labelCol]
		}
		points = append(points, model.ChartPoint{Label: label, Value: v})
		if len(points) >= limit {
			break
		}
	}
	if len(points) == 0 {
		return model.ErrorResult(fmt.Sprintf("column %q has no numeric values to chart", col))
	}

	return model.ChartResult(model.ChartPayload{
		Kind:   kind,
		Title:  col,
		YLabel: col,
		Points: points,
	})
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func argNumber(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, ok := Numeric(v); ok {
			return f
		}
	}
	return fallback
}
