package records

import (
	"context"
	"math"
	"strings"
	"testing"

	"datui/model"
)

func testRecords() *model.RecordContext {
	return &model.RecordContext{
		Name:   "videos.json",
		Fields: []string{"duration", "release_date", "thumbnail", "title", "url", "view_count"},
		Records: []map[string]any{
			{"title": "A", "view_count": 10.0, "release_date": "2024-03-01", "duration": "PT2M3S", "thumbnail": "https://img/a.jpg", "url": "https://v/a"},
			{"title": "B", "view_count": 30.0, "release_date": "2024-01-15", "duration": "PT1M0S", "thumbnail": "https://img/b.jpg", "url": "https://v/b"},
			{"title": "C", "view_count": 20.0, "release_date": "2024-02-10", "duration": "4:30", "thumbnail": "https://img/c.jpg", "url": "https://v/c"},
		},
	}
}

func TestCatalogImageTool(t *testing.T) {
	base := Catalog(false)
	for _, tool := range base {
		if tool.Name == "generate_image" {
			t.Error("image tool advertised without a generator")
		}
	}

	withImages := Catalog(true)
	if len(withImages) != len(base)+1 {
		t.Fatalf("catalog size = %d, want %d", len(withImages), len(base)+1)
	}
	seen := make(map[string]bool)
	for _, tool := range withImages {
		if seen[tool.Name] {
			t.Errorf("duplicate tool name %q", tool.Name)
		}
		seen[tool.Name] = true
	}
	if !seen["generate_image"] {
		t.Error("image tool missing from merged catalog")
	}
}

func TestLoad(t *testing.T) {
	rc, err := Load("v.json", `[{"b": 1, "a": 2}, {"a": 3}]`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rc.Records) != 2 {
		t.Errorf("records = %d, want 2", len(rc.Records))
	}
	// Field universe comes from the first record, sorted.
	if len(rc.Fields) != 2 || rc.Fields[0] != "a" || rc.Fields[1] != "b" {
		t.Errorf("fields = %v", rc.Fields)
	}

	for _, bad := range []string{"", "[]", "{}", "not json"} {
		if _, err := Load("v.json", bad); err == nil {
			t.Errorf("Load(%q) should fail", bad)
		}
	}
}

func TestLoadNDJSON(t *testing.T) {
	rc, err := Load("v.ndjson", "{\"a\": 1, \"b\": 2}\n\n{\"a\": 3}\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rc.Records) != 2 {
		t.Errorf("records = %d, want 2", len(rc.Records))
	}
	if len(rc.Fields) != 2 || rc.Fields[0] != "a" || rc.Fields[1] != "b" {
		t.Errorf("fields = %v", rc.Fields)
	}

	// One bad line fails the whole load.
	if _, err := Load("v.ndjson", "{\"a\": 1}\n{truncated"); err == nil {
		t.Error("truncated line should fail the load")
	}
}

func TestComputeStatisticsDurationFallback(t *testing.T) {
	e := Engine{RecordsCtx: testRecords()}
	res := e.Execute(context.Background(), "compute_statistics", map[string]any{"field": "Duration"})
	if res.Kind != model.ResultValue {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	// PT2M3S=123s, PT1M0S=60s, 4:30=270s
	if got := res.Value["mean"].(float64); math.Abs(got-151) > 1e-9 {
		t.Errorf("mean = %v, want 151", got)
	}
	if got := res.Value["count"].(int); got != 3 {
		t.Errorf("count = %v, want 3", got)
	}
}

func TestComputeStatisticsUnknownFieldListsAlternatives(t *testing.T) {
	e := Engine{RecordsCtx: testRecords()}
	res := e.Execute(context.Background(), "compute_statistics", map[string]any{"field": "bogus"})
	if res.Kind != model.ResultError {
		t.Fatal("expected an error result")
	}
	if !strings.Contains(res.Err, "bogus") || !strings.Contains(res.Err, "view_count") {
		t.Errorf("error should name the field and the alternatives: %q", res.Err)
	}
}

func TestPlotMetricSortedAscending(t *testing.T) {
	e := Engine{RecordsCtx: testRecords()}
	res := e.Execute(context.Background(), "plot_metric_over_time", map[string]any{"metric_field": "view_count"})
	if res.Kind != model.ResultChart {
		t.Fatalf("unexpected result kind %v err %q", res.Kind, res.Err)
	}
	points := res.Chart.Points
	if len(points) != 3 {
		t.Fatalf("points = %d, want 3", len(points))
	}
	// Ascending by date: B (Jan), C (Feb), A (Mar).
	wantOrder := []string{"B", "C", "A"}
	for i, want := range wantOrder {
		if points[i].Label != want {
			t.Errorf("points[%d].Label = %q, want %q", i, points[i].Label, want)
		}
	}
}

func TestPlotMetricEmptySeries(t *testing.T) {
	e := Engine{RecordsCtx: &model.RecordContext{
		Fields:  []string{"title"},
		Records: []map[string]any{{"title": "no dates here"}},
	}}
	res := e.Execute(context.Background(), "plot_metric_over_time", map[string]any{"metric_field": "view_count"})
	if res.Kind != model.ResultError {
		t.Fatal("empty series must be an error result")
	}
}

func TestSelectRecord(t *testing.T) {
	e := Engine{RecordsCtx: testRecords()}

	cases := []struct {
		selector string
		want     string
	}{
		{"most viewed", "B"},
		{"least viewed", "A"},
		{"first", "A"},
		{"second", "B"},
		{"third", "C"},
		{"the 2nd one", "B"},
		{"3rd", "C"},
		{"b", "B"}, // title substring
	}
	for _, c := range cases {
		res := e.Execute(context.Background(), "select_record", map[string]any{"selector": c.selector})
		if res.Kind != model.ResultCard {
			t.Errorf("select_record(%q): kind %v err %q", c.selector, res.Kind, res.Err)
			continue
		}
		if res.Card.Title != c.want {
			t.Errorf("select_record(%q) = %q, want %q", c.selector, res.Card.Title, c.want)
		}
	}
}

func TestSelectRecordCardFields(t *testing.T) {
	e := Engine{RecordsCtx: testRecords()}
	res := e.Execute(context.Background(), "select_record", map[string]any{"selector": "most viewed"})
	if res.Card.Thumbnail != "https://img/b.jpg" || res.Card.URL != "https://v/b" {
		t.Errorf("card fields wrong: %+v", res.Card)
	}
}

func TestSelectRecordNoMatch(t *testing.T) {
	e := Engine{RecordsCtx: testRecords()}
	res := e.Execute(context.Background(), "select_record", map[string]any{"selector": "zzz"})
	if res.Kind != model.ResultError {
		t.Fatal("unmatched selector must be an error result")
	}
	for _, want := range []string{"zzz", "A", "B", "C"} {
		if !strings.Contains(res.Err, want) {
			t.Errorf("error should mention %q: %q", want, res.Err)
		}
	}
}

type stubImages struct {
	prompt string
	fail   bool
}

func (s *stubImages) Generate(_ context.Context, prompt string) (model.ImageAttachment, error) {
	s.prompt = prompt
	if s.fail {
		return model.ImageAttachment{}, context.DeadlineExceeded
	}
	return model.ImageAttachment{MIME: "image/png", Data: []byte{0x89}}, nil
}

func TestGenerateImage(t *testing.T) {
	gen := &stubImages{}
	e := Engine{RecordsCtx: testRecords(), Images: gen}

	res := e.Execute(context.Background(), "generate_image", map[string]any{"prompt": "a chart"})
	if res.Kind != model.ResultValue || res.Image == nil {
		t.Fatalf("expected an image-bearing value result, got kind %v err %q", res.Kind, res.Err)
	}
	if gen.prompt != "a chart" {
		t.Errorf("prompt not forwarded: %q", gen.prompt)
	}

	// Unconfigured generator is a user-level error, not a crash.
	e.Images = nil
	res = e.Execute(context.Background(), "generate_image", map[string]any{"prompt": "x"})
	if res.Kind != model.ResultError {
		t.Error("missing generator should be an error result")
	}

	// Catalog only advertises the tool when a generator is wired.
	if got := len((Engine{RecordsCtx: testRecords()}).Catalog()); got != 3 {
		t.Errorf("catalog without generator = %d tools, want 3", got)
	}
	if got := len((Engine{RecordsCtx: testRecords(), Images: gen}).Catalog()); got != 4 {
		t.Errorf("catalog with generator = %d tools, want 4", got)
	}
}
