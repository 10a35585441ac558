package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/flightlog/cli/render"
	"github.com/justapithecus/flightlog/types"
)

// ResultModel browses an analysis result. Row 0 is the combined Total row,
// followed by one row per aircraft.
type ResultModel struct {
	result   types.AnalysisResult
	total    types.Aircraft
	cursor   int
	width    int
	quitting bool
}

// NewResultModel creates a browser over result.
func NewResultModel(result types.AnalysisResult) ResultModel {
	total := types.Aircraft{Name: render.TotalRow}
	for _, a := range result.Aircrafts {
		total.TotalSeconds += a.TotalSeconds
		total.GroundSeconds += a.GroundSeconds
		total.Flights += a.Flights
		total.Destroyed += a.Destroyed
	}
	return ResultModel{result: result, total: total}
}

// Selected returns the highlighted row.
func (m ResultModel) Selected() types.Aircraft {
	if m.cursor == 0 {
		return m.total
	}
	return m.result.Aircrafts[m.cursor-1]
}

func (m ResultModel) rows() int { return 1 + len(m.result.Aircrafts) }

// Init implements tea.Model.
func (m ResultModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < m.rows()-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m ResultModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Aircraft"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		PanelStyle.Render(m.renderList()),
		PanelStyle.Render(m.renderDetail()),
	))

	if len(m.result.Failures) > 0 {
		b.WriteString("\n\n")
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Failures (%d)", len(m.result.Failures))))
		for _, f := range m.result.Failures {
			b.WriteString("\n  ")
			b.WriteString(f)
		}
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ select • q quit"))
	return b.String()
}

func (m ResultModel) renderList() string {
	lines := make([]string, 0, m.rows())
	for i := range m.rows() {
		a := m.total
		if i > 0 {
			a = m.result.Aircrafts[i-1]
		}
		line := fmt.Sprintf("%s (%s)", a.Name, render.SecondsDisplay(a.TotalSeconds))
		if i == m.cursor {
			line = SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m ResultModel) renderDetail() string {
	var lines []string
	row := func(label, value string) {
		lines = append(lines, LabelStyle.Render(label)+ValueStyle.Render(value))
	}

	if m.cursor == 0 {
		if len(m.result.Aircrafts) == 0 {
			return "No aircraft recorded"
		}
		for _, a := range m.result.Aircrafts {
			row(a.Name, render.DetailedTime(a.TotalSeconds))
		}
		return strings.Join(lines, "\n")
	}

	a := m.Selected()
	row("Total hours", render.DetailedTime(a.TotalSeconds))
	row("Flight hours", render.DetailedTime(a.FlightSeconds()))
	row("Ground hours", render.DetailedTime(a.GroundSeconds))
	row("Flights", fmt.Sprintf("%d", a.Flights))
	row("Destroyed", fmt.Sprintf("%d", a.Destroyed))
	if len(a.Missions) > 0 {
		lines = append(lines, "", LabelStyle.Render("Missions"))
		for _, ms := range a.Missions {
			row("  "+ms.Name, render.DetailedTime(ms.Seconds))
		}
	}
	return strings.Join(lines, "\n")
}
