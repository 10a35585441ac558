package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/flightlog/cli/render"
	"github.com/justapithecus/flightlog/lode"
)

// StatsModel renders a stored report as stat boxes above the result browser.
type StatsModel struct {
	report   *lode.Report
	result   ResultModel
	quitting bool
}

// NewStatsModel creates a stats view over report.
func NewStatsModel(report *lode.Report) StatsModel {
	return StatsModel{report: report, result: NewResultModel(report.Result)}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	next, cmd := m.result.Update(msg)
	m.result = next.(ResultModel)
	return m, cmd
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	r := m.report
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Session %s", r.SessionID)))
	b.WriteString("\n")
	b.WriteString(OutcomeStyle(string(r.Outcome)).Render(string(r.Outcome)))
	b.WriteString(fmt.Sprintf("  %s  %s\n\n", r.Reader, r.StartedAt.Format("2006-01-02 15:04:05")))

	boxes := []string{
		renderStatBox("Files", fmt.Sprint(r.Progress.Total), highlightColor),
		renderStatBox("Succeeded", fmt.Sprint(r.Progress.Successful), successColor),
		renderStatBox("Failed", fmt.Sprint(r.Progress.Failed), errorColor),
		renderStatBox("Aircraft", fmt.Sprint(len(r.Result.Aircrafts)), primaryColor),
		renderStatBox("Total time", render.SecondsDisplay(r.Result.TotalSeconds()), warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")
	b.WriteString(m.result.View())
	return b.String()
}

func renderStatBox(label, value string, color lipgloss.Color) string {
	valueStr := StatValueStyle.Foreground(color).Render(value)
	labelStr := StatLabelStyle.Render(label)
	return StatBoxStyle.BorderForeground(color).Render(lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr))
}

// RenderStatsStatic renders a report without starting a program.
func RenderStatsStatic(report *lode.Report) string {
	return lipgloss.NewStyle().Padding(1, 2).Render(NewStatsModel(report).View())
}
