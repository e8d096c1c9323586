package configerror

import (
	"bytes"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTwoProblems = errors.Join(
	errors.New("access_code is required"),
	errors.New("audio.hum_gain must be within [0, 1]"),
)

func TestConfigError_New(t *testing.T) {
	m := New(errTwoProblems, "/tmp/config.yaml")

	assert.Equal(t, 0, m.width)
	assert.Equal(t, 0, m.height)
	assert.Equal(t, []string{"access_code is required", "audio.hum_gain must be within [0, 1]"}, m.problems)
}

func TestConfigError_NilError(t *testing.T) {
	m := New(nil, "")
	assert.Empty(t, m.problems)
	assert.NotEmpty(t, m.SetSize(80, 24).View())
}

func TestConfigError_Init(t *testing.T) {
	assert.Nil(t, New(errTwoProblems, "").Init())
}

func TestConfigError_SetSize(t *testing.T) {
	m := New(errTwoProblems, "").SetSize(120, 40)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)

	m2 := m.SetSize(80, 24)
	assert.Equal(t, 80, m2.width)
	assert.Equal(t, 120, m.width, "original model unchanged")
}

func TestConfigError_WindowSizeMsg(t *testing.T) {
	newModel, cmd := New(errTwoProblems, "").Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	updated := newModel.(Model)
	assert.Equal(t, 80, updated.width)
	assert.Equal(t, 24, updated.height)
	assert.Nil(t, cmd)
}

func TestConfigError_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"q key", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := New(errTwoProblems, "").SetSize(80, 24).Update(tt.key)
			require.NotNil(t, cmd)
			_, isQuit := cmd().(tea.QuitMsg)
			assert.True(t, isQuit)
		})
	}
}

func TestConfigError_OtherKeyMsg(t *testing.T) {
	_, cmd := New(errTwoProblems, "").SetSize(80, 24).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)
}

func TestConfigError_EmptyDimensions(t *testing.T) {
	assert.Equal(t, "", New(errTwoProblems, "").SetSize(0, 24).View())
	assert.Equal(t, "", New(errTwoProblems, "").SetSize(80, 0).View())
}

func TestConfigError_View(t *testing.T) {
	view := New(errTwoProblems, "/tmp/config.yaml").SetSize(120, 40).View()

	assert.Contains(t, view, "CONFIGURATION FAULT")
	assert.Contains(t, view, "/tmp/config.yaml")
	assert.Contains(t, view, "access_code is required")
	assert.Contains(t, view, "audio.hum_gain")
	assert.Contains(t, view, "vault131 init")
	assert.Contains(t, view, "Press q to quit")
}

func TestConfigError_View_Stability(t *testing.T) {
	m := New(errTwoProblems, "").SetSize(80, 24)
	assert.Equal(t, m.View(), m.View())
}

func TestConfigError_Program(t *testing.T) {
	tm := teatest.NewTestModel(t, New(errTwoProblems, ""), teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("CONFIGURATION FAULT")) && bytes.Contains(b, []byte("access_code"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}
