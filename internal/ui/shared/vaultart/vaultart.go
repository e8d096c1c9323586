// Package vaultart provides the vault door ASCII art used by the terminal
// and the configuration error screen.
package vaultart

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vaulttec/vault131/internal/ui/styles"
)

// doorHeight is the height every piece is padded to before joining.
const doorHeight = 7

// Door pieces, rendered separately so each can take its own color. The
// "%s" slot in the hub holds the vault number.
var (
	hingeLines = []string{
		"▐█",
		"▐█",
		"▐█",
	}

	doorLines = []string{
		"    ▄▄▄████▄▄▄    ",
		"  ▄█▀▀  ╷╷  ▀▀█▄  ",
		" █▌  ╭────────╮ ▐█ ",
		"██═══┤  %s   ├═══██",
		" █▌  ╰────────╯ ▐█ ",
		"  ▀█▄▄  ╵╵  ▄▄█▀  ",
		"    ▀▀▀████▀▀▀    ",
	}

	crackedLines = []string{
		"    ▄▄▄██ ╲▄▄▄    ",
		"  ▄█▀▀  ╷ ╲ ▀▀█▄  ",
		" █▌  ╭─────╲──╮ ▐█ ",
		"██═══┤  %s ╲ ├═══██",
		" █▌  ╰──────╱─╯ ▐█ ",
		"  ▀█▄▄  ╵ ╱ ▄▄█▀  ",
		"    ▀▀▀██╱▀▀▀    ",
	}

	plateLines = []string{
		"VAULT-TEC",
		"─────────",
		"SECURE",
		"STORAGE",
	}
)

// BuildVaultDoor renders the sealed door with number on its hub.
func BuildVaultDoor(number string) string {
	return build(doorLines, number, styles.TextPrimaryColor)
}

// BuildCrackedDoor renders a damaged door, used when the terminal cannot
// start.
func BuildCrackedDoor(number string) string {
	return build(crackedLines, number, styles.StatusErrorColor)
}

func build(lines []string, number string, doorColor lipgloss.TerminalColor) string {
	doorStyle := lipgloss.NewStyle().Foreground(doorColor)
	hingeStyle := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor)
	plateStyle := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Bold(true)

	hub := hubLabel(number)
	door := make([]string, len(lines))
	for i, line := range lines {
		door[i] = strings.Replace(line, "%s", hub, 1)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		renderLines(padLines(hingeLines), hingeStyle),
		renderLines(door, doorStyle),
		"   ",
		renderLines(padLines(plateLines), plateStyle),
	)
}

// hubLabel fits the number into the three cells on the hub.
func hubLabel(number string) string {
	number = strings.TrimSpace(number)
	if w := lipgloss.Width(number); w < 3 {
		number = strings.Repeat(" ", 3-w) + number
	}
	runes := []rune(number)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}

// padLines centers lines vertically within doorHeight rows.
func padLines(lines []string) []string {
	if len(lines) >= doorHeight {
		return lines
	}

	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}

	diff := doorHeight - len(lines)
	top := diff / 2
	empty := strings.Repeat(" ", maxWidth)

	result := make([]string, 0, doorHeight)
	for range top {
		result = append(result, empty)
	}
	result = append(result, lines...)
	for range diff - top {
		result = append(result, empty)
	}
	return result
}

func renderLines(lines []string, style lipgloss.Style) string {
	return style.Render(strings.Join(lines, "\n"))
}
