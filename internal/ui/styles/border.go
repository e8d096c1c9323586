package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Frame characters (double line, like a Vault-Tec terminal bezel).
const (
	frameTopLeft     = "╔"
	frameTopRight    = "╗"
	frameBottomLeft  = "╚"
	frameBottomRight = "╝"
	frameHorizontal  = "═"
	frameVertical    = "║"
)

// RenderPanel renders content inside a frame with titles set into the top
// edge: leftTitle after the corner, rightTitle before the far corner. Pass
// "" to omit a title. The frame uses the focus color when focused.
func RenderPanel(content, leftTitle, rightTitle string, width, height int, focused bool) string {
	frameColor := BorderDefaultColor
	if focused {
		frameColor = BorderFocusColor
	}
	frame := lipgloss.NewStyle().Foreground(frameColor)
	title := lipgloss.NewStyle().Foreground(TextPrimaryColor).Bold(true)

	inner := max(width-2, 1)
	rows := max(height-2, 1)

	body := lipgloss.NewStyle().Width(inner).Height(rows).MaxHeight(rows).Render(content)
	lines := strings.Split(body, "\n")

	var b strings.Builder
	b.WriteString(topEdge(leftTitle, rightTitle, inner, frame, title))
	for i := range rows {
		var line string
		if i < len(lines) {
			line = ansi.Truncate(lines[i], inner, "")
		}
		if pad := inner - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		b.WriteString("\n")
		b.WriteString(frame.Render(frameVertical) + line + frame.Render(frameVertical))
	}
	b.WriteString("\n")
	b.WriteString(frame.Render(frameBottomLeft + strings.Repeat(frameHorizontal, inner) + frameBottomRight))
	return b.String()
}

// topEdge lays out ╔═ Left ════ Right ═╗. Titles are dropped right first,
// then truncated, when the frame is too narrow.
func topEdge(left, right string, inner int, frame, title lipgloss.Style) string {
	plain := func() string {
		return frame.Render(frameTopLeft + strings.Repeat(frameHorizontal, inner) + frameTopRight)
	}
	if left == "" && right == "" {
		return plain()
	}

	// "═ " + title + " " on each side, plus at least one rule between.
	need := 1
	if left != "" {
		need += lipgloss.Width(left) + 3
	}
	if right != "" {
		need += lipgloss.Width(right) + 3
	}
	if need > inner && right != "" {
		return topEdge(left, "", inner, frame, title)
	}
	if need > inner {
		avail := inner - 4
		if avail < 1 {
			return plain()
		}
		left = TruncateString(left, avail)
		need = lipgloss.Width(left) + 4
	}

	var b strings.Builder
	b.WriteString(frame.Render(frameTopLeft))
	if left != "" {
		b.WriteString(frame.Render(frameHorizontal + " "))
		b.WriteString(title.Render(left))
		b.WriteString(frame.Render(" "))
	}
	b.WriteString(frame.Render(strings.Repeat(frameHorizontal, 1+inner-need)))
	if right != "" {
		b.WriteString(frame.Render(" "))
		b.WriteString(title.Render(right))
		b.WriteString(frame.Render(" " + frameHorizontal))
	}
	b.WriteString(frame.Render(frameTopRight))
	return b.String()
}

// TruncateString shortens s to maxWidth cells, ending in "..." when cut.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return ansi.Truncate(s, maxWidth, "...")
}
