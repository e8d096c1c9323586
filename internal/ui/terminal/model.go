// Package terminal is the Bubble Tea front end of the vault terminal. It
// renders one screen per session stage and forwards visitor actions to the
// session machine and the audio engine.
package terminal

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/vaulttec/vault131/internal/log"
	"github.com/vaulttec/vault131/internal/sound"
	"github.com/vaulttec/vault131/internal/ui/styles"
	"github.com/vaulttec/vault131/internal/vault/application"
	"github.com/vaulttec/vault131/internal/vault/domain"
)

// StatusNoAudio is shown when the AUDIO control is used on a terminal
// started without an audio engine.
const StatusNoAudio = "Audio unavailable on this terminal."

// Audio is the part of the sound engine the terminal drives.
type Audio interface {
	Toggle(ctx context.Context) sound.Report
	State() sound.State
	PlayConfirmation() bool
	PlayKeystroke() bool
}

// Options configures a Model.
type Options struct {
	Machine *application.Machine
	// Audio may be nil, in which case the AUDIO control reports that sound
	// is unavailable.
	Audio Audio
	// Context bounds audio loading. Defaults to context.Background.
	Context       context.Context
	ShowStatusBar bool
	BootNotice    bool
	// Zones defaults to a fresh manager.
	Zones *zone.Manager
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusError
	statusSuccess
)

// target is a focusable or clickable element on a screen.
type target string

const (
	fieldName      target = "name"
	fieldCode      target = "code"
	fieldAnswer    target = "answer"
	buttonAudio    target = "audio"
	buttonContinue target = "continue"
	buttonBack     target = "back"
	buttonLogin    target = "login"
	buttonSubmit   target = "submit"
	buttonReset    target = "reset"
)

func (t target) isField() bool {
	return t == fieldName || t == fieldCode || t == fieldAnswer
}

// targets lists a stage's elements in focus order.
func targets(stage domain.Stage) []target {
	switch stage {
	case domain.StageLogin:
		return []target{fieldName, fieldCode, buttonLogin, buttonAudio, buttonBack}
	case domain.StageRiddles:
		return []target{fieldAnswer, buttonSubmit, buttonAudio, buttonReset}
	case domain.StageSuccess:
		return []target{buttonAudio, buttonReset}
	default:
		return []target{buttonAudio, buttonContinue, buttonReset}
	}
}

func initialFocus(stage domain.Stage) target {
	switch stage {
	case domain.StageLogin:
		return fieldName
	case domain.StageRiddles:
		return fieldAnswer
	case domain.StageSuccess:
		return buttonReset
	default:
		return buttonContinue
	}
}

// Model is the root terminal model.
type Model struct {
	ctx     context.Context
	machine *application.Machine
	audio   Audio
	zones   *zone.Manager
	prefix  string
	keys    KeyMap
	help    help.Model
	notices *noticeRenderer

	showStatusBar bool
	bootNotice    bool

	name   textinput.Model
	code   textinput.Model
	answer textinput.Model

	stage   domain.Stage
	focus   target
	hovered target

	status     string
	statusKind statusKind

	width  int
	height int
}

// New creates the terminal model positioned on the machine's current stage.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	zones := opts.Zones
	if zones == nil {
		zones = zone.New()
	}

	m := Model{
		ctx:           ctx,
		machine:       opts.Machine,
		audio:         opts.Audio,
		zones:         zones,
		prefix:        zones.NewPrefix(),
		keys:          DefaultKeyMap,
		help:          help.New(),
		notices:       newNoticeRenderer(),
		showStatusBar: opts.ShowStatusBar,
		bootNotice:    opts.BootNotice,
		name:          newInput("(refer to issued identification)", 64),
		code:          newInput("___-___-__", 32),
		answer:        newInput("Enter response…", 128),
	}
	m.code.EchoMode = textinput.EchoPassword
	m.code.EchoCharacter = '•'

	m.enterStage(m.machine.Stage())
	m.status = m.machine.StageStatus()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "> "
	ti.PromptStyle = styles.DimStyle
	ti.TextStyle = styles.StatusStyle
	ti.PlaceholderStyle = styles.FaintStyle
	ti.Width = 40
	return ti
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.SetSize(msg.Width, msg.Height)
		return m, nil

	case audioReportMsg:
		kind := statusInfo
		if msg.report.Fatal {
			kind = statusError
		}
		m.setStatus(msg.report.Status(), kind)
		return m, nil

	case RiddlesReloadedMsg:
		var cmd tea.Cmd
		if m.stage != m.machine.Stage() {
			cmd = m.enterStage(m.machine.Stage())
			m.setStatus(m.machine.StageStatus(), statusInfo)
		} else if m.stage == domain.StageRiddles {
			m.setStatus(m.machine.StageStatus(), statusInfo)
		}
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateInput(msg)
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.help.Width = width

	w := min(max(width-12, 10), 48)
	m.name.Width = w
	m.code.Width = w
	m.answer.Width = w
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Audio):
		return m.activate(buttonAudio)
	case key.Matches(msg, m.keys.Reset):
		return m.activate(buttonReset)
	}

	if m.focus.isField() && m.audio != nil {
		m.audio.PlayKeystroke()
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		return m, m.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.moveFocus(-1)
	case key.Matches(msg, m.keys.Back):
		if m.stage == domain.StageLogin {
			return m.activate(buttonBack)
		}
		return m, nil
	case key.Matches(msg, m.keys.Activate):
		return m.activate(m.submitTarget())
	}

	return m, m.updateInput(msg)
}

// submitTarget is what enter triggers for the focused element.
func (m Model) submitTarget() target {
	switch m.focus {
	case fieldName:
		return fieldName
	case fieldCode:
		return buttonLogin
	case fieldAnswer:
		return buttonSubmit
	}
	return m.focus
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	hit := m.targetAt(msg)

	switch msg.Action {
	case tea.MouseActionMotion:
		if hit != m.hovered {
			m.hovered = hit
			if hit != "" && !hit.isField() && hit != buttonAudio && m.audio != nil {
				m.audio.PlayConfirmation()
			}
		}
		return m, nil

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || hit == "" {
			return m, nil
		}
		cmd := m.focusOn(hit)
		if hit.isField() {
			return m, cmd
		}
		next, actionCmd := m.activate(hit)
		return next, tea.Batch(cmd, actionCmd)
	}
	return m, nil
}

func (m Model) targetAt(msg tea.MouseMsg) target {
	for _, t := range targets(m.stage) {
		if z := m.zones.Get(m.zoneID(t)); z != nil && z.InBounds(msg) {
			return t
		}
	}
	return ""
}

func (m Model) zoneID(t target) string {
	return m.prefix + string(t)
}

func (m Model) activate(t target) (tea.Model, tea.Cmd) {
	switch t {
	case fieldName:
		return m, m.focusOn(fieldCode)
	case buttonAudio:
		return m.toggleAudio()
	case buttonContinue:
		return m.apply(m.machine.Continue())
	case buttonBack:
		return m.apply(m.machine.Back())
	case buttonLogin:
		out := m.machine.SubmitLogin(m.name.Value(), m.code.Value())
		m.code.Reset()
		return m.apply(out)
	case buttonSubmit:
		return m.apply(m.machine.SubmitAnswer(m.answer.Value()))
	case buttonReset:
		return m.apply(m.machine.Reset())
	}
	return m, nil
}

func (m Model) toggleAudio() (tea.Model, tea.Cmd) {
	if m.audio == nil {
		m.setStatus(StatusNoAudio, statusError)
		return m, nil
	}
	if m.audio.State() == sound.Disabled {
		m.setStatus(sound.Report{Action: sound.ActionEnable, Pending: true}.Status(), statusInfo)
	}
	return m, toggleAudio(m.ctx, m.audio)
}

// apply reflects an outcome on screen. Entering a stage shows that stage's
// status line, which replaces the outcome's own.
func (m Model) apply(out application.Outcome) (tea.Model, tea.Cmd) {
	switch out.Kind {
	case application.OutcomeRejected:
		log.Debug(log.CatUI, "Action rejected", "action", out.Action, "stage", out.From)
		m.setStatus(out.Status, statusError)
		return m, nil

	case application.OutcomeAdvanced:
		cmd := m.enterStage(m.machine.Stage())
		kind := statusInfo
		if m.stage == domain.StageSuccess {
			kind = statusSuccess
		}
		m.setStatus(m.machine.StageStatus(), kind)
		return m, cmd
	}
	return m, nil
}

// enterStage lays out the inputs for stage and moves focus to its first
// element. The name input is prefilled from the session; the code input
// always starts empty.
func (m *Model) enterStage(stage domain.Stage) tea.Cmd {
	m.stage = stage
	m.hovered = ""
	m.code.Reset()
	m.answer.Reset()
	switch stage {
	case domain.StageLogin:
		m.name.SetValue(m.machine.Session().Name)
		m.name.CursorEnd()
	case domain.StageBoot:
		m.name.Reset()
	}
	return m.focusOn(initialFocus(stage))
}

func (m *Model) focusOn(t target) tea.Cmd {
	m.focus = t
	m.name.Blur()
	m.code.Blur()
	m.answer.Blur()
	if in := m.input(t); in != nil {
		return in.Focus()
	}
	return nil
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	order := targets(m.stage)
	i := 0
	for j, t := range order {
		if t == m.focus {
			i = j
			break
		}
	}
	i = (i + delta + len(order)) % len(order)
	return m.focusOn(order[i])
}

func (m *Model) input(t target) *textinput.Model {
	switch t {
	case fieldName:
		return &m.name
	case fieldCode:
		return &m.code
	case fieldAnswer:
		return &m.answer
	}
	return nil
}

func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	in := m.input(m.focus)
	if in == nil {
		return nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

func (m *Model) setStatus(s string, kind statusKind) {
	m.status = s
	m.statusKind = kind
}

// Status returns the current status line.
func (m Model) Status() string {
	return m.status
}

// Stage returns the stage currently on screen.
func (m Model) Stage() domain.Stage {
	return m.stage
}
