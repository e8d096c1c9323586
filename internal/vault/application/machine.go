package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vaulttec/vault131/internal/log"
	"github.com/vaulttec/vault131/internal/vault/domain"
)

// Status messages shown to the visitor.
const (
	StatusBoot          = "Initializing Vault-Tec terminal…"
	StatusLogin         = "Manual page vault131(1) — authorization required"
	StatusNameRequired  = "ERROR: Name field empty. Provide identification."
	StatusAccessDenied  = "ACCESS DENIED: Invalid access code."
	StatusAccessGranted = "ACCESS GRANTED: Loading riddle protocol…"
	StatusIncorrect     = "INCORRECT: Try again."
	StatusVerified      = "VERIFIED: Issuing physical access code…"
	StatusReset         = "Session reset."
	StatusUnavailable   = "Action unavailable."
)

// Action names used in outcomes, errors and traces.
const (
	ActionContinue     = "continue"
	ActionBack         = "back"
	ActionSubmitLogin  = "submit-login"
	ActionSubmitAnswer = "submit-answer"
	ActionReset        = "reset"
)

// OutcomeKind classifies the result of an action.
type OutcomeKind int

const (
	// OutcomeIgnored means the action does not apply to the current stage.
	OutcomeIgnored OutcomeKind = iota
	// OutcomeAdvanced means the session moved forward or was reset.
	OutcomeAdvanced
	// OutcomeRejected means validation failed and nothing changed.
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeRejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// Outcome describes what an action did.
type Outcome struct {
	Action string
	Kind   OutcomeKind
	From   domain.Stage
	To     domain.Stage
	Status string
	Err    error
}

// Machine owns the session and applies transitions atomically.
type Machine struct {
	mu      sync.Mutex
	game    Game
	store   Store
	sounds  Sounds
	session domain.Session

	// traceCtx parents the vault.transition span of every action.
	traceCtx context.Context
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithTraceContext nests transition spans under the span carried by ctx.
// Without it each transition is a root span.
func WithTraceContext(ctx context.Context) MachineOption {
	return func(m *Machine) {
		if ctx != nil {
			m.traceCtx = ctx
		}
	}
}

// NewMachine creates a machine seeded from store, or from defaults when the
// store has nothing usable. A nil sounds disables audio intents.
func NewMachine(game Game, store Store, sounds Sounds, opts ...MachineOption) *Machine {
	if sounds == nil {
		sounds = silentSounds{}
	}
	if store == nil {
		store = NewMemoryStore()
	}

	session := domain.DefaultSession()
	if restored, ok := store.Load(); ok {
		session = restored.Sanitize(len(game.Riddles))
		log.Debug(log.CatVault, "Restored session", "stage", session.Stage, "riddle", session.RiddleIndex)
	}

	m := &Machine{
		game:     game,
		store:    store,
		sounds:   sounds,
		session:  session,
		traceCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns a scrubbed copy of the current session.
func (m *Machine) Session() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Safe()
}

// Stage returns the current stage.
func (m *Machine) Stage() domain.Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Stage
}

// RiddleCount returns the number of configured riddles.
func (m *Machine) RiddleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.game.Riddles)
}

// Riddle returns the current riddle. ok is false outside the riddles stage
// or when the game has no riddles.
func (m *Machine) Riddle() (domain.Riddle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Stage != domain.StageRiddles || len(m.game.Riddles) == 0 {
		return domain.Riddle{}, false
	}
	return m.game.Riddles[m.clampedIndex()], true
}

// Progress returns the 1-based number of the current riddle and the total.
func (m *Machine) Progress() (current, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clampedIndex() + 1, len(m.game.Riddles)
}

// RevealCode returns the briefcase code once the session reached success.
func (m *Machine) RevealCode() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Stage != domain.StageSuccess {
		return "", false
	}
	return m.game.BriefcaseCode, true
}

// StageStatus returns the status line for entering the current stage.
func (m *Machine) StageStatus() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stageStatus()
}

func (m *Machine) stageStatus() string {
	switch m.session.Stage {
	case domain.StageLogin:
		return StatusLogin
	case domain.StageRiddles:
		return riddleStatus(m.clampedIndex()+1, len(m.game.Riddles))
	case domain.StageSuccess:
		return StatusVerified
	default:
		return StatusBoot
	}
}

func riddleStatus(current, total int) string {
	return fmt.Sprintf("RIDDLE PROTOCOL: %d/%d", current, total)
}

// Continue moves from boot to login.
func (m *Machine) Continue() Outcome {
	return m.apply(ActionContinue, func() Outcome {
		if m.session.Stage != domain.StageBoot {
			return m.ignored(ActionContinue)
		}
		m.session.Stage = domain.StageLogin
		m.persist()
		return m.advanced(ActionContinue, domain.StageBoot, StatusLogin)
	})
}

// Back returns from login to boot.
func (m *Machine) Back() Outcome {
	return m.apply(ActionBack, func() Outcome {
		if m.session.Stage != domain.StageLogin {
			return m.ignored(ActionBack)
		}
		m.session.Stage = domain.StageBoot
		m.persist()
		return m.advanced(ActionBack, domain.StageLogin, StatusBoot)
	})
}

// SubmitLogin checks the visitor's name and access code. The name is kept
// even when the attempt fails; the code never is.
func (m *Machine) SubmitLogin(name, code string) Outcome {
	return m.apply(ActionSubmitLogin, func() Outcome {
		if m.session.Stage != domain.StageLogin {
			return m.ignored(ActionSubmitLogin)
		}

		m.session.Name = strings.TrimSpace(name)
		m.session.Code = strings.TrimSpace(code)
		defer func() { m.session.Code = "" }()

		if m.session.Name == "" {
			return m.rejected(ActionSubmitLogin, StatusNameRequired, domain.ErrNameRequired)
		}
		if m.session.Code != m.game.AccessCode {
			return m.rejected(ActionSubmitLogin, StatusAccessDenied, domain.ErrAccessDenied)
		}

		m.sounds.PlayConfirmation()
		m.session.Stage = domain.StageRiddles
		m.session.RiddleIndex = 0
		m.persist()
		return m.advanced(ActionSubmitLogin, domain.StageLogin, StatusAccessGranted)
	})
}

// SubmitAnswer checks text against the current riddle, advancing to the next
// riddle or to success on a match.
func (m *Machine) SubmitAnswer(text string) Outcome {
	return m.apply(ActionSubmitAnswer, func() Outcome {
		if m.session.Stage != domain.StageRiddles || len(m.game.Riddles) == 0 {
			return m.ignored(ActionSubmitAnswer)
		}

		i := m.clampedIndex()
		if !m.game.Riddles[i].Accepts(text) {
			return m.rejected(ActionSubmitAnswer, StatusIncorrect, domain.ErrIncorrectAnswer)
		}

		m.sounds.PlayConfirmation()
		if i+1 < len(m.game.Riddles) {
			m.session.RiddleIndex = i + 1
			m.persist()
			return m.advanced(ActionSubmitAnswer, domain.StageRiddles, riddleStatus(i+2, len(m.game.Riddles)))
		}

		m.session.Stage = domain.StageSuccess
		m.persist()
		return m.advanced(ActionSubmitAnswer, domain.StageRiddles, StatusVerified)
	})
}

// Reset returns to the default session from any stage, erases the persisted
// snapshot and silences audio.
func (m *Machine) Reset() Outcome {
	return m.apply(ActionReset, func() Outcome {
		from := m.session.Stage
		m.session = domain.DefaultSession()
		m.store.Clear()
		m.sounds.Disable()
		return m.advanced(ActionReset, from, StatusReset)
	})
}

// SetRiddles swaps in a new riddle list. The visitor keeps their place,
// clamped to the new length; an empty list is ignored.
func (m *Machine) SetRiddles(riddles []domain.Riddle) {
	if len(riddles) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.game.Riddles = append([]domain.Riddle(nil), riddles...)
	m.session = m.session.Sanitize(len(m.game.Riddles))
	m.persist()
	log.Info(log.CatVault, "Riddles replaced", "count", len(riddles), "stage", m.session.Stage)
}

func (m *Machine) apply(action string, fn func() Outcome) Outcome {
	_, span := otel.Tracer("vault131/vault").Start(m.traceCtx, "vault.transition")
	defer span.End()

	m.mu.Lock()
	out := fn()
	m.mu.Unlock()

	span.SetAttributes(
		attribute.String("vault.action", action),
		attribute.String("vault.from", out.From.String()),
		attribute.String("vault.to", out.To.String()),
		attribute.String("vault.outcome", out.Kind.String()),
	)
	log.Debug(log.CatVault, "Transition", "action", action, "from", out.From, "to", out.To, "outcome", out.Kind.String())
	return out
}

func (m *Machine) persist() {
	m.store.Save(m.session.Safe())
}

func (m *Machine) clampedIndex() int {
	i := m.session.RiddleIndex
	if i >= len(m.game.Riddles) {
		i = len(m.game.Riddles) - 1
	}
	return max(i, 0)
}

func (m *Machine) advanced(action string, from domain.Stage, status string) Outcome {
	return Outcome{Action: action, Kind: OutcomeAdvanced, From: from, To: m.session.Stage, Status: status}
}

func (m *Machine) rejected(action, status string, err error) Outcome {
	stage := m.session.Stage
	return Outcome{
		Action: action,
		Kind:   OutcomeRejected,
		From:   stage,
		To:     stage,
		Status: status,
		Err:    &domain.TransitionError{Stage: stage, Action: action, Err: err},
	}
}

func (m *Machine) ignored(action string) Outcome {
	stage := m.session.Stage
	return Outcome{
		Action: action,
		Kind:   OutcomeIgnored,
		From:   stage,
		To:     stage,
		Status: StatusUnavailable,
		Err:    &domain.TransitionError{Stage: stage, Action: action, Err: domain.ErrWrongStage},
	}
}
