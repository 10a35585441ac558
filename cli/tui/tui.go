package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/flightlog/lode"
	"github.com/justapithecus/flightlog/session"
	"github.com/justapithecus/flightlog/types"
)

// PollInterval is how often the analysis view reads session progress.
const PollInterval = 100 * time.Millisecond

// Source is the read side of the analysis engine used by the TUI.
type Source interface {
	GetProgress(id string) types.Progress
	GetResult(id string) (types.AnalysisResult, error)
	Status(id string) (session.State, bool)
	Cancel(id string) error
}

// RunAnalysis shows live progress for session id, then the result browser.
// It returns once the user quits. Cancelling from the progress view cancels
// the session.
func RunAnalysis(src Source, id string, opts ...tea.ProgramOption) (*AnalysisModel, error) {
	model := NewAnalysisModel(src, id)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return nil, err
	}
	m := final.(AnalysisModel)
	return &m, nil
}

// RunStats shows a stored report.
func RunStats(report *lode.Report, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(NewStatsModel(report), opts...).Run()
	return err
}
