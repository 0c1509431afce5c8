package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"datui/model"
)

// labelWidth is the column reserved for chart labels.
const labelWidth = 18

// renderChart draws a horizontal bar chart in plain terminal cells.
// Bars are scaled to the largest value; width is the total budget for
// label plus bar.
func renderChart(chart model.ChartPayload, width int) string {
	var b strings.Builder

	if chart.Title != "" {
		b.WriteString(TitleStyle.Render(chart.Title))
		b.WriteString("\n")
	}
	if len(chart.Points) == 0 {
		b.WriteString(DimStyle.Render("(no data points)"))
		return b.String()
	}

	// Bars scale by magnitude so mixed-sign series (deltas, profit)
	// still render; the printed value carries the sign.
	maxMagnitude := 0.0
	for _, p := range chart.Points {
		if m := math.Abs(p.Value); m > maxMagnitude {
			maxMagnitude = m
		}
	}

	barBudget := width - labelWidth - 12
	if barBudget < 10 {
		barBudget = 10
	}

	for _, p := range chart.Points {
		label := p.Label
		if label == "" {
			label = p.Date
		}
		label = runewidth.Truncate(label, labelWidth, "…")
		label += strings.Repeat(" ", labelWidth-runewidth.StringWidth(label))

		barLen := 0
		if maxMagnitude > 0 {
			barLen = int(math.Abs(p.Value) / maxMagnitude * float64(barBudget))
		}
		if barLen == 0 && p.Value != 0 {
			barLen = 1
		}

		fmt.Fprintf(&b, "%s %s %s\n",
			DimStyle.Render(label),
			AssistantStyle.Render(strings.Repeat("█", barLen)),
			formatChartValue(p.Value))
	}

	if chart.XLabel != "" || chart.YLabel != "" {
		b.WriteString(DimStyle.Render(strings.TrimSpace(chart.YLabel + " by " + chart.XLabel)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatChartValue drops the fraction for whole numbers so counts read
// naturally next to averages.
func formatChartValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
