// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme colors, set by ApplyTheme.
var (
	TextPrimaryColor   lipgloss.AdaptiveColor
	TextSecondaryColor lipgloss.AdaptiveColor
	TextMutedColor     lipgloss.AdaptiveColor
	StatusSuccessColor lipgloss.AdaptiveColor
	StatusWarningColor lipgloss.AdaptiveColor
	StatusErrorColor   lipgloss.AdaptiveColor
	BorderDefaultColor lipgloss.AdaptiveColor
	BorderFocusColor   lipgloss.AdaptiveColor
	ButtonTextColor    lipgloss.AdaptiveColor
	ButtonHoverColor   lipgloss.AdaptiveColor
	CodeBoxColor       lipgloss.AdaptiveColor
)

// Derived styles, rebuilt whenever the theme changes.
var (
	HeadingStyle     lipgloss.Style
	DimStyle         lipgloss.Style
	FaintStyle       lipgloss.Style
	LabelStyle       lipgloss.Style
	StatusStyle      lipgloss.Style
	ErrorStyle       lipgloss.Style
	SuccessStyle     lipgloss.Style
	ButtonStyle      lipgloss.Style
	ButtonHoverStyle lipgloss.Style
	SmallButtonStyle lipgloss.Style
	CodeBoxStyle     lipgloss.Style
	StatusBarStyle   lipgloss.Style
)

func init() {
	if err := ApplyTheme(ThemeConfig{}); err != nil {
		panic(err)
	}
}

func rebuildStyles() {
	HeadingStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor).Bold(true)
	DimStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	FaintStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	LabelStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Bold(true)
	StatusStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor).Bold(true)

	ButtonStyle = lipgloss.NewStyle().
		Foreground(ButtonTextColor).
		Background(TextPrimaryColor).
		Bold(true).
		Padding(0, 2)
	ButtonHoverStyle = ButtonStyle.Background(ButtonHoverColor)
	SmallButtonStyle = lipgloss.NewStyle().
		Foreground(TextPrimaryColor).
		Border(lipgloss.NormalBorder(), false, true).
		BorderForeground(BorderDefaultColor).
		Padding(0, 1)

	CodeBoxStyle = lipgloss.NewStyle().
		Foreground(CodeBoxColor).
		Bold(true).
		Border(lipgloss.DoubleBorder()).
		BorderForeground(BorderFocusColor).
		Padding(0, 3)

	StatusBarStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
}
