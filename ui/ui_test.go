package ui

import (
	"strings"
	"testing"

	"datui/model"
	"datui/storage"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantArg  string
	}{
		{"/load data.csv", "load", "data.csv"},
		{"/load  ~/videos.json ", "load", "~/videos.json"},
		{"/help", "help", ""},
		{"/PROVIDER openai", "provider", "openai"},
		{"/search mean of views", "search", "mean of views"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, arg := parseCommand(tt.in)
			if name != tt.wantName || arg != tt.wantArg {
				t.Errorf("parseCommand(%q) = (%q, %q), want (%q, %q)",
					tt.in, name, arg, tt.wantName, tt.wantArg)
			}
		})
	}
}

func TestRenderChart(t *testing.T) {
	chart := model.ChartPayload{
		Kind:  "bar",
		Title: "views by title",
		Points: []model.ChartPoint{
			{Label: "Deep Dive", Value: 4800},
			{Label: "First Steps", Value: 1200},
			{Label: "Quick Tips", Value: 300},
		},
	}

	out := renderChart(chart, 60)

	if !strings.Contains(out, "views by title") {
		t.Errorf("missing title:\n%s", out)
	}
	for _, label := range []string{"Deep Dive", "First Steps", "Quick Tips"} {
		if !strings.Contains(out, label) {
			t.Errorf("missing label %q:\n%s", label, out)
		}
	}

	// The largest value gets the longest bar.
	lines := strings.Split(out, "\n")
	barLen := func(line string) int { return strings.Count(line, "█") }
	var deep, quick int
	for _, line := range lines {
		if strings.Contains(line, "Deep Dive") {
			deep = barLen(line)
		}
		if strings.Contains(line, "Quick Tips") {
			quick = barLen(line)
		}
	}
	if deep <= quick {
		t.Errorf("bar scaling wrong: deep=%d quick=%d\n%s", deep, quick, out)
	}
	// Small but nonzero values still show one cell.
	if quick == 0 {
		t.Errorf("nonzero value rendered empty bar:\n%s", out)
	}
}

func TestRenderChartNegativeValues(t *testing.T) {
	chart := model.ChartPayload{
		Kind:  "bar",
		Title: "weekly change",
		Points: []model.ChartPoint{
			{Label: "week 1", Value: 250},
			{Label: "week 2", Value: -900},
			{Label: "week 3", Value: 0},
		},
	}

	out := renderChart(chart, 60)

	barLen := func(label string) int {
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, label) {
				return strings.Count(line, "█")
			}
		}
		return -1
	}

	// The largest magnitude wins regardless of sign, zero draws nothing,
	// and the printed value keeps the sign.
	if w1, w2 := barLen("week 1"), barLen("week 2"); w2 <= w1 {
		t.Errorf("magnitude scaling wrong: week1=%d week2=%d\n%s", w1, w2, out)
	}
	if z := barLen("week 3"); z != 0 {
		t.Errorf("zero value bar = %d, want 0\n%s", z, out)
	}
	if !strings.Contains(out, "-900") {
		t.Errorf("negative value not printed:\n%s", out)
	}
}

func TestRenderChartEmpty(t *testing.T) {
	out := renderChart(model.ChartPayload{Title: "empty"}, 60)
	if !strings.Contains(out, "no data points") {
		t.Errorf("empty chart = %q", out)
	}
}

func TestFormatChartValue(t *testing.T) {
	if got := formatChartValue(4800); got != "4800" {
		t.Errorf("whole = %q", got)
	}
	if got := formatChartValue(12.5); got != "12.50" {
		t.Errorf("fraction = %q", got)
	}
}

func TestPickerFilter(t *testing.T) {
	p := newSessionPicker([]storage.SessionMetadata{
		{Session: storage.Session{ID: "1", Name: "channel stats"}},
		{Session: storage.Session{ID: "2", Name: "duration analysis"}},
		{Session: storage.Session{ID: "3", Name: "scratch"}},
	})

	if len(p.filtered) != 3 {
		t.Fatalf("initial filtered = %d, want 3", len(p.filtered))
	}

	p.filter.SetValue("chst")
	p.applyFilter()
	if len(p.filtered) != 1 || p.filtered[0].id != "1" {
		t.Errorf("fuzzy filter = %+v", p.filtered)
	}

	p.filter.SetValue("")
	p.applyFilter()
	if len(p.filtered) != 3 {
		t.Errorf("cleared filter = %d items", len(p.filtered))
	}
}

func TestNewModelPickerSelectsCurrent(t *testing.T) {
	p := newModelPicker([]model.ModelInfo{
		{Name: "llama3.1:latest", Size: 4_700_000_000},
		{Name: "qwen2.5:14b", Size: 9_000_000_000},
	}, "qwen2.5:14b")

	if p.selected != 1 {
		t.Errorf("selected = %d, want 1", p.selected)
	}
	if !strings.Contains(p.items[0].detail, "GB") {
		t.Errorf("size detail = %q", p.items[0].detail)
	}
}
