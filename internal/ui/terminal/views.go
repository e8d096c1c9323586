package terminal

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/vaulttec/vault131/internal/sound"
	"github.com/vaulttec/vault131/internal/ui/shared/vaultart"
	"github.com/vaulttec/vault131/internal/ui/styles"
	"github.com/vaulttec/vault131/internal/vault/domain"
)

const (
	panelTitle = "VAULT-TEC TERMINAL"

	// bannerMinHeight is the terminal height needed to show the door art on
	// the boot screen.
	bannerMinHeight = 30

	codeBoxMinWidth = 9
)

// Notices rendered as markdown.
const (
	noticeBoot    = "NOTICE: Press `ctrl+t` or click AUDIO once to enable sound."
	noticeSuccess = "Present this code to the Vault-Tec containment unit for immediate access."
)

// View renders the terminal.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var bar string
	panelHeight := m.height
	if m.showStatusBar {
		bar = m.renderStatusBar()
		panelHeight -= lipgloss.Height(bar)
	}

	contentWidth := max(m.width-6, 10)
	body := lipgloss.NewStyle().Padding(1, 2).Render(m.renderScreen(contentWidth))
	out := styles.RenderPanel(body, panelTitle, m.audioLabel(), m.width, panelHeight, true)
	if bar != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, bar)
	}
	return m.zones.Scan(out)
}

func (m Model) renderScreen(width int) string {
	switch m.stage {
	case domain.StageLogin:
		return m.renderLogin(width)
	case domain.StageRiddles:
		return m.renderRiddles(width)
	case domain.StageSuccess:
		return m.renderSuccess(width)
	default:
		return m.renderBoot(width)
	}
}

func (m Model) renderBoot(width int) string {
	var b strings.Builder
	if m.height >= bannerMinHeight {
		b.WriteString(vaultart.BuildVaultDoor("131"))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.HeadingStyle.Render("VAULT 131 DATABASE"))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("WELCOME, OPERATIVE."))
	b.WriteString("\n")
	b.WriteString(rule(width))
	b.WriteString("\n\n")
	b.WriteString(m.buttonRow(
		m.renderButton(buttonAudio, m.audioLabel(), true),
		m.renderButton(buttonContinue, "CONTINUE", false),
		m.renderButton(buttonReset, "RESET SESSION", true),
	))
	b.WriteString("\n\n")
	b.WriteString(rule(width))
	if m.bootNotice {
		b.WriteString("\n")
		b.WriteString(m.notices.render(noticeBoot, width))
	}
	return b.String()
}

func (m Model) renderLogin(width int) string {
	var b strings.Builder
	b.WriteString(styles.HeadingStyle.Render("AUTHORIZATION REQUIRED"))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Vault-Tec Industries — Personnel Access"))
	b.WriteString("\n")
	b.WriteString(rule(width))
	b.WriteString("\n\n")
	b.WriteString(m.renderField(fieldName, "NAME (as printed on identification)", m.name.View()))
	b.WriteString("\n\n")
	b.WriteString(m.renderField(fieldCode, "ACCESS CODE", m.code.View()))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintStyle.Render("Access code is printed on issued identification."))
	b.WriteString("\n\n")
	b.WriteString(m.buttonRow(
		m.renderButton(buttonLogin, "LOGIN", false),
		m.renderButton(buttonAudio, m.audioLabel(), true),
		m.renderButton(buttonBack, "BACK", true),
	))
	return b.String()
}

func (m Model) renderRiddles(width int) string {
	current, total := m.machine.Progress()
	subject := m.machine.Session().Name
	if subject == "" {
		subject = "UNKNOWN"
	}

	var b strings.Builder
	b.WriteString(styles.HeadingStyle.Render("VAULT 131 VERIFICATION"))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Subject: " + subject))
	b.WriteString("\n")
	b.WriteString(rule(width))
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render(styles.FormatRiddleHeading(current, total)))
	b.WriteString("  ")
	b.WriteString(styles.FaintStyle.Render(styles.ProgressPips(current, total)))
	b.WriteString("\n")
	if riddle, ok := m.machine.Riddle(); ok {
		b.WriteString(styles.StatusStyle.Render(wordwrap.String(riddle.Prompt(), width)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderField(fieldAnswer, "ANSWER", m.answer.View()))
	b.WriteString("\n\n")
	b.WriteString(m.buttonRow(
		m.renderButton(buttonSubmit, "SUBMIT", false),
		m.renderButton(buttonAudio, m.audioLabel(), true),
		m.renderButton(buttonReset, "RESET", true),
	))
	b.WriteString("\n\n")
	b.WriteString(rule(width))
	b.WriteString("\n")
	b.WriteString(styles.FaintStyle.Render("NOTE: Responses are not case-sensitive. Punctuation doesn't matter much."))
	return b.String()
}

func (m Model) renderSuccess(width int) string {
	code, _ := m.machine.RevealCode()

	var b strings.Builder
	b.WriteString(styles.HeadingStyle.Render("VERIFICATION COMPLETE"))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Vault-Tec Industries — Access Granted"))
	b.WriteString("\n")
	b.WriteString(rule(width))
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render("BRIEFCASE UNLOCK CODE"))
	b.WriteString("\n")
	b.WriteString(styles.CodeBoxStyle.Render(codeBox(code, codeBoxMinWidth)))
	b.WriteString("\n")
	b.WriteString(m.notices.render(noticeSuccess, width))
	b.WriteString("\n")
	b.WriteString(m.buttonRow(
		m.renderButton(buttonAudio, m.audioLabel(), true),
		m.renderButton(buttonReset, "RESET SESSION", true),
	))
	return b.String()
}

func (m Model) renderField(t target, label, view string) string {
	return styles.LabelStyle.Render(label) + "\n" + m.zones.Mark(m.zoneID(t), view)
}

func (m Model) renderButton(t target, label string, small bool) string {
	style := styles.ButtonStyle
	if small {
		style = styles.SmallButtonStyle
	}
	if t == m.focus || t == m.hovered {
		style = styles.ButtonHoverStyle
	}
	return m.zones.Mark(m.zoneID(t), style.Render(label))
}

func (m Model) buttonRow(buttons ...string) string {
	parts := make([]string, 0, len(buttons)*2)
	for i, btn := range buttons {
		if i > 0 {
			parts = append(parts, "  ")
		}
		parts = append(parts, btn)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderStatusBar() string {
	style := styles.StatusStyle
	switch m.statusKind {
	case statusError:
		style = styles.ErrorStyle
	case statusSuccess:
		style = styles.SuccessStyle
	}
	line := style.Render(styles.TruncateString("STATUS: "+m.status, m.width))
	return line + "\n" + styles.StatusBarStyle.Render(m.help.View(m.keys))
}

// audioLabel is the caption of the AUDIO control.
func (m Model) audioLabel() string {
	if m.audio == nil {
		return "AUDIO: N/A"
	}
	state := m.audio.State()
	if state == sound.Enabling {
		return "AUDIO: …"
	}
	return state.Label()
}

func rule(width int) string {
	return styles.FaintStyle.Render(strings.Repeat("─", width))
}

// codeBox spaces out the code's characters and centers them within at
// least minWidth cells.
func codeBox(code string, minWidth int) string {
	spaced := strings.Join(strings.Split(code, ""), " ")
	w := max(runewidth.StringWidth(spaced), minWidth)
	left := (w - runewidth.StringWidth(spaced)) / 2
	return runewidth.FillRight(strings.Repeat(" ", left)+spaced, w)
}

// noticeRenderer renders short markdown notices, reusing the glamour
// renderer until the width changes.
type noticeRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func newNoticeRenderer() *noticeRenderer {
	return &noticeRenderer{}
}

func (n *noticeRenderer) render(md string, width int) string {
	if n.renderer == nil || n.width != width {
		style := "dark"
		if lipgloss.ColorProfile() == termenv.Ascii {
			style = "notty"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return styles.FaintStyle.Render(wordwrap.String(md, width))
		}
		n.renderer = r
		n.width = width
	}

	out, err := n.renderer.Render(md)
	if err != nil {
		return styles.FaintStyle.Render(wordwrap.String(md, width))
	}
	return strings.Trim(out, "\n")
}
