package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderHelp() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("datui help"))
	b.WriteString("\n\n")
	b.WriteString(TitleStyle.Render("Keys"))
	b.WriteString("\n")
	for _, row := range [][2]string{
		{"enter", "send message"},
		{"alt+enter", "newline in input"},
		{"esc", "stop generation / close overlay"},
		{"ctrl+l", "model selector"},
		{"ctrl+s", "session manager"},
		{"ctrl+y", "copy last response"},
		{"ctrl+h", "this help"},
		{"ctrl+c", "quit"},
	} {
		b.WriteString("  " + SelectedStyle.Render(padRight(row[0], 12)) + row[1] + "\n")
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("Commands"))
	b.WriteString("\n")
	for _, row := range [][2]string{
		{"/load <path>", "attach a .csv, .tsv or .json dataset"},
		{"/unload", "clear the attachment"},
		{"/models", "list and pick a model"},
		{"/sessions", "browse saved sessions"},
		{"/new", "start a fresh session"},
		{"/provider [id]", "list or switch providers"},
		{"/search <text>", "search all session history"},
		{"/copy", "copy last response"},
		{"/quit", "quit"},
	} {
		b.WriteString("  " + SelectedStyle.Render(padRight(row[0], 16)) + row[1] + "\n")
	}

	b.WriteString("\n")
	b.WriteString(DimStyle.Render("With a dataset attached, questions are answered with live tool\n" +
		"calls against your data; analysis questions get runnable Python."))
	b.WriteString("\n\n")
	b.WriteString(FormatFooter("any key", "Close"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
