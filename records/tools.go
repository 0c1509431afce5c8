package records

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"datui/model"
	"datui/tools"
)

// Catalog returns the tool set advertised in structured-record mode. The
// names are disjoint from the tabular catalog so both can be concatenated.
func Catalog(withImages bool) []mcptypes.Tool {
	if withImages {
		return tools.Merge(baseCatalog(), imageCatalog())
	}
	return baseCatalog()
}

func baseCatalog() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "compute_statistics",
			Description: "Compute count, mean, median, standard deviation, min and max for a numeric field of the loaded records. Duration strings (PT1H2M3S or H:MM:SS) are coerced to seconds.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"field": map[string]any{"type": "string", "description": "Field to analyze"},
				},
				Required: []string{"field"},
			},
		},
		{
			Name:        "plot_metric_over_time",
			Description: "Build a time series chart of a metric field across the records, ordered by date.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"metric_field": map[string]any{"type": "string", "description": "Numeric (or duration) field to plot"},
					"date_field":   map[string]any{"type": "string", "description": "Date field, defaults to release_date"},
				},
				Required: []string{"metric_field"},
			},
		},
		{
			Name:        "select_record",
			Description: "Select one record to show the user as a card. The selector can be a superlative (most viewed, least viewed), an ordinal (first, second, 3rd) or part of a title.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"selector": map[string]any{"type": "string", "description": "How to pick the record"},
				},
				Required: []string{"selector"},
			},
		},
	}
}

func imageCatalog() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "generate_image",
			Description: "Generate an illustrative image from a text prompt and attach it to the reply.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"prompt": map[string]any{"type": "string", "description": "What to draw"},
				},
				Required: []string{"prompt"},
			},
		},
	}
}

// ImageGenerator produces an image for the generate_image tool. Generation
// happens against an external service, so executions may take a while; the
// tool loop awaits each call before continuing the round.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (model.ImageAttachment, error)
}

// Engine executes the structured-record catalog against one record context.
type Engine struct {
	RecordsCtx *model.RecordContext
	Images     ImageGenerator
}

// Catalog implements the turn engine contract.
func (e Engine) Catalog() []mcptypes.Tool { return Catalog(e.Images != nil) }

// Execute runs one tool. All user-input failures are error results.
func (e Engine) Execute(ctx context.Context, name string, args map[string]any) model.ToolResult {
	if name == "generate_image" {
		return e.generateImage(ctx, args)
	}

	if e.RecordsCtx == nil || len(e.RecordsCtx.Records) == 0 {
		return model.ErrorResult("no records loaded; ask the user to attach a JSON file first")
	}

	switch name {
	case "compute_statistics":
		return e.computeStatistics(args)
	case "plot_metric_over_time":
		return e.plotMetric(args)
	case "select_record":
		return e.selectRecord(args)
	default:
		return model.ErrorResult(fmt.Sprintf("unknown tool %q; available: compute_statistics, plot_metric_over_time, select_record", name))
	}
}

func (e Engine) computeStatistics(args map[string]any) model.ToolResult {
	requested, _ := args["field"].(string)
	field := ResolveField(e.RecordsCtx.Fields, requested)

	var vals []float64
	for _, rec := range e.RecordsCtx.Records {
		if v, ok := numericValue(field, rec[field]); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return model.ErrorResult(fmt.Sprintf("field %q has no numeric values; available fields: %s",
			requested, strings.Join(e.RecordsCtx.Fields, ", ")))
	}

	st := describe(vals)
	return model.ValueResult(map[string]any{
		"field":  field,
		"count":  st.count,
		"mean":   st.mean,
		"median": st.median,
		"std":    st.std,
		"min":    st.min,
		"max":    st.max,
	})
}

func (e Engine) plotMetric(args map[string]any) model.ToolResult {
	metricReq, _ := args["metric_field"].(string)
	dateReq, _ := args["date_field"].(string)
	if dateReq == "" {
		dateReq = "release_date"
	}

	metric := ResolveField(e.RecordsCtx.Fields, metricReq)
	dateField := ResolveField(e.RecordsCtx.Fields, dateReq)
	title := titleField(e.RecordsCtx.Fields)

	var points []model.ChartPoint
	for _, rec := range e.RecordsCtx.Records {
		dv := rec[dateField]
		if dv == nil {
			continue
		}
		date := stringValue(dv)
		if _, ok := parseDate(date); !ok {
			continue
		}
		v, ok := numericValue(metric, rec[metric])
		if !ok {
			continue
		}
		points = append(points, model.ChartPoint{
			Date:  date,
			Label: stringValue(rec[title]),
			Value: v,
		})
	}

	if len(points) == 0 {
		return model.ErrorResult(fmt.Sprintf("no records have both a %q date and a numeric %q; available fields: %s",
			dateReq, metricReq, strings.Join(e.RecordsCtx.Fields, ", ")))
	}

	sort.SliceStable(points, func(i, j int) bool {
		ti, _ := parseDate(points[i].Date)
		tj, _ := parseDate(points[j].Date)
		return ti.Before(tj)
	})

	return model.ChartResult(model.ChartPayload{
		Kind:   "line",
		Title:  fmt.Sprintf("%s over %s", metric, dateField),
		XLabel: dateField,
		YLabel: metric,
		Points: points,
	})
}

// selectRecord resolves a selector in strict priority order: superlative,
// then ordinal, then title substring.
func (e Engine) selectRecord(args map[string]any) model.ToolResult {
	selector, _ := args["selector"].(string)
	sel := strings.ToLower(strings.TrimSpace(selector))
	recs := e.RecordsCtx.Records

	if idx, ok := e.bySuperlative(sel); ok {
		return e.card(recs[idx])
	}
	if idx, ok := ordinalIndex(sel); ok && idx < len(recs) {
		return e.card(recs[idx])
	}
	if idx, ok := e.byTitleSubstring(sel); ok {
		return e.card(recs[idx])
	}

	return model.ErrorResult(fmt.Sprintf(
		"could not match selector %q; try \"most viewed\", \"least viewed\", an ordinal like \"first\", or part of a title (%s)",
		selector, strings.Join(e.titles(), ", ")))
}

func (e Engine) bySuperlative(sel string) (int, bool) {
	most := strings.Contains(sel, "most viewed") || strings.Contains(sel, "most-viewed") || strings.Contains(sel, "most popular")
	least := strings.Contains(sel, "least viewed") || strings.Contains(sel, "least-viewed") || strings.Contains(sel, "least popular")
	if !most && !least {
		return 0, false
	}

	field := viewField(e.RecordsCtx.Fields)
	if field == "" {
		return 0, false
	}

	best := -1
	var bestVal float64
	for i, rec := range e.RecordsCtx.Records {
		v, ok := numericValue(field, rec[field])
		if !ok {
			continue
		}
		if best < 0 || (most && v > bestVal) || (least && v < bestVal) {
			best = i
			bestVal = v
		}
	}
	return best, best >= 0
}

var ordinalWords = map[string]int{"first": 0, "second": 1, "third": 2}

func ordinalIndex(sel string) (int, bool) {
	for word, idx := range ordinalWords {
		if strings.Contains(sel, word) {
			return idx, true
		}
	}
	// Digit ordinals: "4th", "21st", "the 2nd one".
	for _, tok := range strings.Fields(sel) {
		tok = strings.TrimRight(tok, ".,!?")
		for _, suffix := range []string{"th", "st", "nd", "rd"} {
			if strings.HasSuffix(tok, suffix) {
				if n, err := strconv.Atoi(strings.TrimSuffix(tok, suffix)); err == nil && n > 0 {
					return n - 1, true
				}
			}
		}
	}
	return 0, false
}

func (e Engine) byTitleSubstring(sel string) (int, bool) {
	if sel == "" {
		return 0, false
	}
	field := titleField(e.RecordsCtx.Fields)
	for i, rec := range e.RecordsCtx.Records {
		if strings.Contains(strings.ToLower(stringValue(rec[field])), sel) {
			return i, true
		}
	}
	return 0, false
}

func (e Engine) card(rec map[string]any) model.ToolResult {
	fields := e.RecordsCtx.Fields
	return model.CardResult(model.CardPayload{
		Title:     stringValue(rec[titleField(fields)]),
		Thumbnail: stringValue(rec[matchField(fields, "thumbnail", "thumb", "image")]),
		URL:       stringValue(rec[matchField(fields, "url", "link")]),
	})
}

func (e Engine) titles() []string {
	field := titleField(e.RecordsCtx.Fields)
	out := make([]string, 0, len(e.RecordsCtx.Records))
	for _, rec := range e.RecordsCtx.Records {
		if t := stringValue(rec[field]); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (e Engine) generateImage(ctx context.Context, args map[string]any) model.ToolResult {
	prompt, _ := args["prompt"].(string)
	if strings.TrimSpace(prompt) == "" {
		return model.ErrorResult("generate_image needs a non-empty prompt")
	}
	if e.Images == nil {
		return model.ErrorResult("image generation is not configured for this session")
	}

	img, err := e.Images.Generate(ctx, prompt)
	if err != nil {
		return model.ErrorResult(fmt.Sprintf("image generation failed: %v", err))
	}

	res := model.ValueResult(map[string]any{"note": "image generated and attached to the reply"})
	res.Image = &img
	return res
}

// titleField picks the title-like field, falling back to the first field.
func titleField(fields []string) string {
	if f := matchField(fields, "title", "name"); f != "" {
		return f
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// viewField picks a view-count-like field.
func viewField(fields []string) string {
	return matchField(fields, "view", "play")
}

// matchField returns the first field whose normalized name contains one of
// the needles, in needle priority order.
func matchField(fields []string, needles ...string) string {
	for _, needle := range needles {
		for _, f := range fields {
			if strings.Contains(normalizeFieldName(f), needle) {
				return f
			}
		}
	}
	return ""
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type stats struct {
	count                       int
	mean, median, std, min, max float64
}

func describe(vals []float64) stats {
	st := stats{count: len(vals), min: vals[0], max: vals[0]}
	var sum float64
	for _, v := range vals {
		sum += v
		if v < st.min {
			st.min = v
		}
		if v > st.max {
			st.max = v
		}
	}
	st.mean = sum / float64(len(vals))

	var sq float64
	for _, v := range vals {
		d := v - st.mean
		sq += d * d
	}
	st.std = math.Sqrt(sq / float64(len(vals)))

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		st.median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		st.median = sorted[mid]
	}
	return st
}
