package tabular

import (
	"context"
	"math"
	"strings"
	"testing"

	"datui/model"
)

func testEngine(t *testing.T) Engine {
	t.Helper()
	table, err := Load("videos.csv", sampleCSV)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return Engine{Table: table}
}

func TestResolveColumnInsensitive(t *testing.T) {
	headers := []string{"view_count", "Like Count", "title"}

	cases := []struct{ in, want string }{
		{"view_count", "view_count"},
		{"View_Count", "view_count"},
		{"viewcount", "view_count"},
		{"VIEW-COUNT", "view_count"},
		{"likecount", "Like Count"},
		{"nope", "nope"}, // unresolved passes through unchanged
	}
	for _, c := range cases {
		if got := ResolveColumn(headers, c.in); got != c.want {
			t.Errorf("ResolveColumn(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAggregateMean(t *testing.T) {
	e := testEngine(t)
	res := e.Execute(context.Background(), "aggregate_column", map[string]any{"column": "Views", "op": "mean"})
	if res.Kind != model.ResultValue {
		t.Fatalf("result kind = %v, err = %q", res.Kind, res.Err)
	}
	got := res.Value["value"].(float64)
	want := (1000.0 + 2500 + 500) / 3
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("mean = %v, want %v", got, want)
	}
}

func TestAggregateGrouped(t *testing.T) {
	e := Engine{Table: &model.TableContext{
		Headers: []string{"cat", "n"},
		Rows: []map[string]string{
			{"cat": "a", "n": "1"},
			{"cat": "a", "n": "3"},
			{"cat": "b", "n": "10"},
		},
	}}
	res := e.Execute(context.Background(), "aggregate_column", map[string]any{"column": "n", "op": "sum", "group_by": "cat"})
	if res.Kind != model.ResultValue {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	groups := res.Value["groups"].(map[string]any)
	if groups["a"].(float64) != 4 || groups["b"].(float64) != 10 {
		t.Errorf("groups = %v", groups)
	}
}

func TestUnresolvableColumnListsHeaders(t *testing.T) {
	e := testEngine(t)
	res := e.Execute(context.Background(), "top_n", map[string]any{"column": "bogus", "n": 3.0})
	if res.Kind != model.ResultError {
		t.Fatal("expected an error result")
	}
	if !strings.Contains(res.Err, "bogus") || !strings.Contains(res.Err, "views") {
		t.Errorf("error should name the column and list alternatives: %q", res.Err)
	}
}

func TestEmptyRowsNeverThrow(t *testing.T) {
	e := Engine{Table: &model.TableContext{Headers: []string{"a"}}}
	for _, tool := range []string{"filter_rows", "aggregate_column", "top_n", "correlate", "chart_column"} {
		res := e.Execute(context.Background(), tool, map[string]any{"column": "a"})
		if res.Kind != model.ResultError {
			t.Errorf("%s on empty rows should return an error result", tool)
		}
	}
}

func TestTopN(t *testing.T) {
	e := testEngine(t)
	res := e.Execute(context.Background(), "top_n", map[string]any{"column": "views", "n": 2.0})
	if res.Kind != model.ResultValue {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	rows := res.Value["rows"].([]map[string]string)
	if len(rows) != 2 || rows[0]["title"] != "Deep Dive" {
		t.Errorf("top_n order wrong: %v", rows)
	}

	res = e.Execute(context.Background(), "top_n", map[string]any{"column": "views", "n": 1.0, "direction": "bottom"})
	rows = res.Value["rows"].([]map[string]string)
	if rows[0]["title"] != "Short" {
		t.Errorf("bottom ranking wrong: %v", rows)
	}
}

func TestCorrelateKnownSeries(t *testing.T) {
	e := Engine{Table: &model.TableContext{
		Headers: []string{"x", "y"},
		Rows: []map[string]string{
			{"x": "1", "y": "2"},
			{"x": "2", "y": "4"},
			{"x": "3", "y": "6"},
		},
	}}
	res := e.Execute(context.Background(), "correlate", map[string]any{"column_x": "x", "column_y": "y"})
	if res.Kind != model.ResultValue {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if r := res.Value["pearson_r"].(float64); math.Abs(r-1) > 1e-9 {
		t.Errorf("pearson_r = %v, want 1", r)
	}
}

func TestChartColumnTagged(t *testing.T) {
	e := testEngine(t)
	res := e.Execute(context.Background(), "chart_column", map[string]any{"column": "views", "label_column": "title"})
	if res.Kind != model.ResultChart {
		t.Fatalf("chart tool must return a chart result, got kind %v err %q", res.Kind, res.Err)
	}
	if res.Chart.Kind != "bar" || len(res.Chart.Points) != 3 {
		t.Errorf("chart payload wrong: %+v", res.Chart)
	}
	if res.Chart.Points[0].Label != "Intro, Part 1" {
		t.Errorf("labels not taken from label_column: %+v", res.Chart.Points[0])
	}
}

func TestFilterRows(t *testing.T) {
	e := testEngine(t)
	res := e.Execute(context.Background(), "filter_rows", map[string]any{"column": "views", "op": "gt", "value": "900"})
	if res.Kind != model.ResultValue {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if res.Value["count"].(int) != 2 {
		t.Errorf("count = %v, want 2", res.Value["count"])
	}

	res = e.Execute(context.Background(), "filter_rows", map[string]any{"column": "title", "op": "contains", "value": "deep"})
	if res.Value["count"].(int) != 1 {
		t.Errorf("contains filter failed: %v", res.Value)
	}
}
