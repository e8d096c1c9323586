package terminal

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vaulttec/vault131/internal/sound"
)

// audioReportMsg carries the result of an audio toggle back to Update.
type audioReportMsg struct {
	report sound.Report
}

// toggleAudio runs the toggle off the update loop; enabling may fetch and
// decode assets.
func toggleAudio(ctx context.Context, a Audio) tea.Cmd {
	return func() tea.Msg {
		return audioReportMsg{report: a.Toggle(ctx)}
	}
}

// RiddlesReloadedMsg tells the terminal the machine's riddle list was
// replaced while it was running.
type RiddlesReloadedMsg struct{}
