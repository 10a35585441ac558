package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/flightlog/session"
	"github.com/justapithecus/flightlog/types"
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(PollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// AnalysisModel polls a running session and then hands over to a
// ResultModel once the session finishes.
type AnalysisModel struct {
	src       Source
	id        string
	bar       progress.Model
	progress  types.Progress
	state     session.State
	cancelled bool
	err       error
	result    *ResultModel
	quitting  bool
}

// NewAnalysisModel creates a progress view for session id.
func NewAnalysisModel(src Source, id string) AnalysisModel {
	return AnalysisModel{
		src:   src,
		id:    id,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(48)),
		state: session.StateRunning,
	}
}

// State returns the last observed session state.
func (m AnalysisModel) State() session.State { return m.state }

// Progress returns the last observed progress.
func (m AnalysisModel) Progress() types.Progress { return m.progress }

// Init implements tea.Model.
func (m AnalysisModel) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.result != nil {
		next, cmd := m.result.Update(msg)
		r := next.(ResultModel)
		m.result = &r
		m.quitting = r.quitting
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, 80)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Cancel) && !m.cancelled {
			m.cancelled = true
			if err := m.src.Cancel(m.id); err != nil {
				m.err = err
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, nil

	case tickMsg:
		return m.poll()
	}
	return m, nil
}

func (m AnalysisModel) poll() (tea.Model, tea.Cmd) {
	m.progress = m.src.GetProgress(m.id)
	state, ok := m.src.Status(m.id)
	if !ok {
		m.err = session.ErrSessionNotFound
		m.quitting = true
		return m, tea.Quit
	}
	m.state = state

	switch state {
	case session.StateCompleted:
		res, err := m.src.GetResult(m.id)
		if err != nil {
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		r := NewResultModel(res)
		m.result = &r
		return m, nil
	case session.StateCancelled:
		m.quitting = true
		return m, tea.Quit
	}
	return m, tick()
}

// View implements tea.Model.
func (m AnalysisModel) View() string {
	if m.result != nil {
		return m.result.View()
	}
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Analyzing recordings"))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.progress.Fraction()))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %d",
		LabelStyle.Width(0).Render("succeeded"), SuccessStyle.Render(fmt.Sprint(m.progress.Successful)),
		LabelStyle.Width(0).Render("failed"), ErrorStyle.Render(fmt.Sprint(m.progress.Failed)),
		LabelStyle.Width(0).Render("total"), m.progress.Total,
	))
	if m.cancelled {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render("Cancelling, waiting for in-flight files..."))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("ctrl+c cancel"))
	return b.String()
}

// Err returns the error that ended the view, if any.
func (m AnalysisModel) Err() error { return m.err }
