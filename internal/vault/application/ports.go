// Package application drives the vault session through its stages and
// reports every transition as an Outcome for the presentation layer.
package application

import "github.com/vaulttec/vault131/internal/vault/domain"

// Store is the best-effort persistence collaborator. Implementations swallow
// their own failures; the in-memory session stays authoritative.
type Store interface {
	// Load returns the persisted session, or false when none is usable.
	Load() (domain.Session, bool)
	// Save persists s. Callers pass an already scrubbed session.
	Save(s domain.Session)
	// Clear removes the persisted session.
	Clear()
}

// Sounds is the subset of the audio subsystem the machine triggers.
type Sounds interface {
	PlayConfirmation()
	Disable()
}

// Game is the static configuration the machine validates against.
type Game struct {
	AccessCode    string
	BriefcaseCode string
	Riddles       []domain.Riddle
}

type silentSounds struct{}

func (silentSounds) PlayConfirmation() {}
func (silentSounds) Disable()          {}
