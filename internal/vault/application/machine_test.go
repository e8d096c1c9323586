package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
	"pgregory.net/rapid"

	"github.com/vaulttec/vault131/internal/vault/domain"
)

const (
	testAccessCode    = "101-317-76"
	testBriefcaseCode = "731"
)

func testGame() Game {
	return Game{
		AccessCode:    testAccessCode,
		BriefcaseCode: testBriefcaseCode,
		Riddles: []domain.Riddle{
			domain.NewRiddle("I light the dark but I'm not the sun.", "pip-boy light", "pipboy light", "pip boy light", "flashlight"),
			domain.NewRiddle("Bottle it up, cap it tight.", "nuka-cola", "nuka cola", "nuka"),
			domain.NewRiddle("I'm currency to some, and junk to others.", "caps", "bottle caps", "cap"),
			domain.NewRiddle("You hear the click, then feel the glow.", "radiation", "rads", "irradiation"),
			domain.NewRiddle("A loyal friend with metal skin.", "dogmeat", "dog meat"),
		},
	}
}

type recordingSounds struct {
	confirmations int
	disables      int
}

func (s *recordingSounds) PlayConfirmation() { s.confirmations++ }
func (s *recordingSounds) Disable()          { s.disables++ }

func newTestMachine(t *testing.T) (*Machine, *MemoryStore, *recordingSounds) {
	t.Helper()
	store := NewMemoryStore()
	sounds := &recordingSounds{}
	return NewMachine(testGame(), store, sounds), store, sounds
}

func loginMachine(t *testing.T) (*Machine, *MemoryStore, *recordingSounds) {
	t.Helper()
	m, store, sounds := newTestMachine(t)
	require.Equal(t, OutcomeAdvanced, m.Continue().Kind)
	require.Equal(t, OutcomeAdvanced, m.SubmitLogin("Jane", testAccessCode).Kind)
	return m, store, sounds
}

func TestNewMachine_Defaults(t *testing.T) {
	m, _, _ := newTestMachine(t)

	assert.Equal(t, domain.DefaultSession(), m.Session())
	assert.Equal(t, StatusBoot, m.StageStatus())
	_, ok := m.Riddle()
	assert.False(t, ok)
	_, ok = m.RevealCode()
	assert.False(t, ok)
}

func TestContinue(t *testing.T) {
	m, store, _ := newTestMachine(t)

	out := m.Continue()
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, domain.StageBoot, out.From)
	assert.Equal(t, domain.StageLogin, out.To)
	assert.Equal(t, StatusLogin, out.Status)

	restored, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, domain.StageLogin, restored.Stage)

	// Continue only applies in boot.
	out = m.Continue()
	assert.Equal(t, OutcomeIgnored, out.Kind)
	assert.ErrorIs(t, out.Err, domain.ErrWrongStage)
}

func TestBack(t *testing.T) {
	m, _, _ := newTestMachine(t)
	assert.Equal(t, OutcomeIgnored, m.Back().Kind)

	m.Continue()
	out := m.Back()
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, domain.StageBoot, m.Stage())
}

func TestSubmitLogin_Granted(t *testing.T) {
	m, store, sounds := newTestMachine(t)
	m.Continue()

	out := m.SubmitLogin("Jane", testAccessCode)

	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, StatusAccessGranted, out.Status)
	assert.Equal(t, domain.Session{Stage: domain.StageRiddles, Name: "Jane", RiddleIndex: 0}, m.Session())
	assert.Equal(t, 1, sounds.confirmations)
	assert.NotContains(t, string(store.Raw()), testAccessCode)

	current, total := m.Progress()
	assert.Equal(t, 1, current)
	assert.Equal(t, 5, total)
	assert.Equal(t, "RIDDLE PROTOCOL: 1/5", m.StageStatus())
}

func TestSubmitLogin_TrimsInput(t *testing.T) {
	m, _, _ := newTestMachine(t)
	m.Continue()

	out := m.SubmitLogin("  Jane  ", " "+testAccessCode+" ")
	assert.Equal(t, OutcomeAdvanced, out.Kind)
	assert.Equal(t, "Jane", m.Session().Name)
}

func TestSubmitLogin_Denied(t *testing.T) {
	m, store, sounds := newTestMachine(t)
	m.Continue()

	out := m.SubmitLogin("Jane", "000-000-00")

	assert.Equal(t, OutcomeRejected, out.Kind)
	assert.Equal(t, StatusAccessDenied, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrAccessDenied)
	assert.Equal(t, domain.StageLogin, m.Stage())
	assert.Equal(t, "Jane", m.Session().Name)
	assert.Empty(t, m.Session().Code)
	assert.Zero(t, sounds.confirmations)
	assert.NotContains(t, string(store.Raw()), "000-000-00")
}

func TestSubmitLogin_CodeIsCaseSensitive(t *testing.T) {
	game := testGame()
	game.AccessCode = "VAULT-131"
	m := NewMachine(game, NewMemoryStore(), nil)
	m.Continue()

	assert.Equal(t, OutcomeRejected, m.SubmitLogin("Jane", "vault-131").Kind)
	assert.Equal(t, OutcomeAdvanced, m.SubmitLogin("Jane", "VAULT-131").Kind)
}

func TestSubmitLogin_NameCheckedFirst(t *testing.T) {
	m, _, _ := newTestMachine(t)
	m.Continue()

	out := m.SubmitLogin("   ", "000-000-00")
	assert.Equal(t, OutcomeRejected, out.Kind)
	assert.Equal(t, StatusNameRequired, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrNameRequired)
	assert.Equal(t, domain.StageLogin, m.Stage())
}

func TestSubmitLogin_WrongStage(t *testing.T) {
	m, _, _ := newTestMachine(t)

	out := m.SubmitLogin("Jane", testAccessCode)
	assert.Equal(t, OutcomeIgnored, out.Kind)
	assert.Equal(t, domain.StageBoot, m.Stage())
}

func TestSubmitAnswer_Incorrect(t *testing.T) {
	m, _, sounds := loginMachine(t)
	before := sounds.confirmations

	out := m.SubmitAnswer("sunset sarsaparilla")

	assert.Equal(t, OutcomeRejected, out.Kind)
	assert.Equal(t, StatusIncorrect, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrIncorrectAnswer)
	assert.Equal(t, 0, m.Session().RiddleIndex)
	assert.Equal(t, domain.StageRiddles, m.Stage())
	assert.Equal(t, before, sounds.confirmations)
}

func TestSubmitAnswer_AllRiddlesReachSuccess(t *testing.T) {
	m, store, sounds := loginMachine(t)

	answers := []string{"Flashlight!", "NUKA-COLA", "bottle caps.", "Rads", "dog meat"}
	for i, answer := range answers {
		require.Equal(t, i, m.Session().RiddleIndex)
		out := m.SubmitAnswer(answer)
		require.Equal(t, OutcomeAdvanced, out.Kind, "answer %q", answer)
	}

	assert.Equal(t, domain.StageSuccess, m.Stage())
	assert.Equal(t, 4, m.Session().RiddleIndex)
	assert.Equal(t, StatusVerified, m.StageStatus())
	assert.Equal(t, 1+len(answers), sounds.confirmations)

	code, ok := m.RevealCode()
	require.True(t, ok)
	assert.Equal(t, testBriefcaseCode, code)

	restored, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, domain.StageSuccess, restored.Stage)

	// Success is terminal for answers.
	assert.Equal(t, OutcomeIgnored, m.SubmitAnswer("dogmeat").Kind)
}

func TestSubmitAnswer_AnyAcceptedAnswerAdvances(t *testing.T) {
	game := testGame()
	rapid.Check(t, func(t *rapid.T) {
		index := rapid.IntRange(0, len(game.Riddles)-1).Draw(t, "index")
		answer := rapid.SampledFrom(game.Riddles[index].Answers()).Draw(t, "answer")
		if rapid.Bool().Draw(t, "upper") {
			answer = strings.ToUpper(answer)
		}
		answer = rapid.SampledFrom([]string{"", "!", "?", "..."}).Draw(t, "suffix") + answer + "."

		store := NewMemoryStore()
		store.Save(domain.Session{Stage: domain.StageRiddles, Name: "Jane", RiddleIndex: index})
		m := NewMachine(game, store, nil)

		out := m.SubmitAnswer(answer)
		if out.Kind != OutcomeAdvanced {
			t.Fatalf("answer %q for riddle %d rejected", answer, index)
		}
		if index == len(game.Riddles)-1 {
			if m.Stage() != domain.StageSuccess {
				t.Fatalf("expected success after last riddle, got %s", m.Stage())
			}
		} else if m.Session().RiddleIndex != index+1 {
			t.Fatalf("expected index %d, got %d", index+1, m.Session().RiddleIndex)
		}
	})
}

func TestSubmitAnswer_UnknownAnswersNeverAdvance(t *testing.T) {
	game := testGame()
	rapid.Check(t, func(t *rapid.T) {
		index := rapid.IntRange(0, len(game.Riddles)-1).Draw(t, "index")
		text := rapid.String().Draw(t, "text")
		if game.Riddles[index].Accepts(text) {
			return
		}

		store := NewMemoryStore()
		store.Save(domain.Session{Stage: domain.StageRiddles, Name: "Jane", RiddleIndex: index})
		m := NewMachine(game, store, nil)

		out := m.SubmitAnswer(text)
		if out.Kind != OutcomeRejected || out.Status != StatusIncorrect {
			t.Fatalf("expected rejection, got %v %q", out.Kind, out.Status)
		}
		if s := m.Session(); s.Stage != domain.StageRiddles || s.RiddleIndex != index {
			t.Fatalf("session changed: %+v", s)
		}
	})
}

func TestReset_FromEveryStage(t *testing.T) {
	setups := map[string]func(m *Machine){
		"boot":    func(m *Machine) {},
		"login":   func(m *Machine) { m.Continue() },
		"riddles": func(m *Machine) { m.Continue(); m.SubmitLogin("Jane", testAccessCode); m.SubmitAnswer("caps") },
		"success": func(m *Machine) {
			m.Continue()
			m.SubmitLogin("Jane", testAccessCode)
			for _, a := range []string{"flashlight", "nuka", "caps", "rads", "dogmeat"} {
				m.SubmitAnswer(a)
			}
		},
	}
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			m, store, sounds := newTestMachine(t)
			setup(m)
			require.Equal(t, domain.Stage(name), m.Stage())

			out := m.Reset()

			assert.Equal(t, OutcomeAdvanced, out.Kind)
			assert.Equal(t, domain.Stage(name), out.From)
			assert.Equal(t, domain.DefaultSession(), m.Session())
			assert.Nil(t, store.Raw())
			assert.Equal(t, 1, sounds.disables)
		})
	}
}

func TestNewMachine_RestoresSnapshot(t *testing.T) {
	store := NewMemoryStore()
	store.Save(domain.Session{Stage: domain.StageRiddles, Name: "Jane", RiddleIndex: 3})

	m := NewMachine(testGame(), store, nil)

	assert.Equal(t, domain.Session{Stage: domain.StageRiddles, Name: "Jane", RiddleIndex: 3}, m.Session())
	r, ok := m.Riddle()
	require.True(t, ok)
	assert.True(t, r.Accepts("radiation"))
}

func TestNewMachine_ClampsOutOfRangeSnapshot(t *testing.T) {
	store := NewMemoryStore()
	store.Save(domain.Session{Stage: domain.StageRiddles, Name: "Jane", RiddleIndex: 42})

	m := NewMachine(testGame(), store, nil)
	assert.Equal(t, 4, m.Session().RiddleIndex)
}

func TestNewMachine_NamelessSuccessSnapshotReturnsToLogin(t *testing.T) {
	store := NewMemoryStore()
	store.Save(domain.Session{Stage: domain.StageSuccess, RiddleIndex: 4})

	m := NewMachine(testGame(), store, nil)

	assert.Equal(t, domain.StageLogin, m.Stage())
	code, ok := m.RevealCode()
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestTransitionSpans_NestUnderTraceContext(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	ctx, parent := otel.Tracer("test").Start(context.Background(), "vault131.run")
	m := NewMachine(testGame(), NewMemoryStore(), nil, WithTraceContext(ctx))
	m.Continue()
	parent.End()

	var transitions []sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() == "vault.transition" {
			transitions = append(transitions, s)
		}
	}
	require.Len(t, transitions, 1)
	assert.Equal(t, parent.SpanContext().TraceID(), transitions[0].Parent().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), transitions[0].Parent().SpanID())
}

func TestTransitionSpans_AreRootsByDefault(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	m, _, _ := newTestMachine(t)
	m.Continue()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.False(t, ended[0].Parent().IsValid())
}

func TestSetRiddles_ClampsPlace(t *testing.T) {
	m, store, _ := loginMachine(t)
	for _, a := range []string{"flashlight", "nuka", "caps"} {
		require.Equal(t, OutcomeAdvanced, m.SubmitAnswer(a).Kind)
	}
	require.Equal(t, 3, m.Session().RiddleIndex)

	m.SetRiddles([]domain.Riddle{
		domain.NewRiddle("First?", "one"),
		domain.NewRiddle("Second?", "two"),
	})

	assert.Equal(t, 2, m.RiddleCount())
	assert.Equal(t, 1, m.Session().RiddleIndex)
	current, total := m.Progress()
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, total)
	saved, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, 1, saved.RiddleIndex)

	assert.Equal(t, OutcomeAdvanced, m.SubmitAnswer("two").Kind)
	assert.Equal(t, domain.StageSuccess, m.Stage())
}

func TestSetRiddles_IgnoresEmpty(t *testing.T) {
	m, _, _ := newTestMachine(t)
	m.SetRiddles(nil)
	assert.Equal(t, 5, m.RiddleCount())
}

type failingRepo struct{ err error }

func (r failingRepo) Load(string) ([]byte, error) { return nil, r.err }
func (r failingRepo) Save(string, []byte) error   { return r.err }
func (r failingRepo) Delete(string) error         { return r.err }

func TestMachine_PersistenceFailuresAreAbsorbed(t *testing.T) {
	store := NewSnapshotStore(failingRepo{err: errors.New("disk full")}, "")
	m := NewMachine(testGame(), store, nil)

	assert.Equal(t, OutcomeAdvanced, m.Continue().Kind)
	assert.Equal(t, OutcomeAdvanced, m.SubmitLogin("Jane", testAccessCode).Kind)
	assert.Equal(t, domain.StageRiddles, m.Stage())
	assert.Equal(t, OutcomeAdvanced, m.Reset().Kind)
	assert.Equal(t, domain.DefaultSession(), m.Session())
}

// TestProperty_SnapshotNeverContainsAccessCode drives random action
// sequences and checks every persisted payload.
func TestProperty_SnapshotNeverContainsAccessCode(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := NewMemoryStore()
		m := NewMachine(testGame(), store, nil)

		codes := rapid.SampledFrom([]string{testAccessCode, "000-000-00", "", " " + testAccessCode})
		names := rapid.SampledFrom([]string{"Jane", "", "  ", "Vault Dweller"})
		answers := rapid.SampledFrom([]string{"flashlight", "nuka", "caps", "rads", "dogmeat", "wrong", testAccessCode})

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 4).Draw(t, "action") {
			case 0:
				m.Continue()
			case 1:
				m.Back()
			case 2:
				m.SubmitLogin(names.Draw(t, "name"), codes.Draw(t, "code"))
			case 3:
				m.SubmitAnswer(answers.Draw(t, "answer"))
			case 4:
				m.Reset()
			}

			if raw := store.Raw(); strings.Contains(string(raw), testAccessCode) {
				t.Fatalf("snapshot leaked access code: %s", raw)
			}
			if m.Session().Code != "" {
				t.Fatalf("session retained code after action")
			}
			if restored, ok := store.Load(); ok && restored.Code != "" {
				t.Fatalf("restored session carries a code")
			}
		}
	})
}
