// Package configerror provides the screen shown when the terminal cannot
// start because its configuration is invalid.
package configerror

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vaulttec/vault131/internal/ui/shared/vaultart"
	"github.com/vaulttec/vault131/internal/ui/styles"
)

// Model holds the configuration error view state.
type Model struct {
	problems   []string
	configPath string
	width      int
	height     int
}

// New creates the view for err, which may join several problems.
// configPath is the file that was loaded, or "" when defaults were used.
func New(err error, configPath string) Model {
	return Model{problems: splitProblems(err), configPath: configPath}
}

func splitProblems(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the error screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.StatusErrorColor).
		MarginTop(1)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondaryColor)

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMutedColor).
		Italic(true).
		MarginTop(2)

	var content strings.Builder

	content.WriteString(vaultart.BuildCrackedDoor("131"))
	content.WriteString("\n\n")
	content.WriteString(titleStyle.Render("TERMINAL OFFLINE: CONFIGURATION FAULT"))
	content.WriteString("\n\n")
	if m.configPath != "" {
		content.WriteString(messageStyle.Render("Config file: " + m.configPath))
		content.WriteString("\n\n")
	}
	for _, p := range m.problems {
		content.WriteString(messageStyle.Render("  • " + p))
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(messageStyle.Render("Fix the values above, or run 'vault131 init' to write a fresh config file."))
	content.WriteString("\n")
	content.WriteString(hintStyle.Render("Press q to quit"))

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center)

	return containerStyle.Render(content.String())
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}
