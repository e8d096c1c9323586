package domain

import (
	"encoding/json"
	"fmt"
)

// Stage is the phase of a visitor's session.
type Stage string

const (
	StageBoot    Stage = "boot"
	StageLogin   Stage = "login"
	StageRiddles Stage = "riddles"
	StageSuccess Stage = "success"
)

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageBoot, StageLogin, StageRiddles, StageSuccess:
		return true
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// Session is the single process-wide visitor session.
//
// Code holds the access code only for the duration of a login attempt.
// It is never written to a snapshot.
type Session struct {
	Stage       Stage  `json:"stage"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	RiddleIndex int    `json:"riddleIndex"`
}

// DefaultSession returns the session a fresh visitor starts with.
func DefaultSession() Session {
	return Session{Stage: StageBoot}
}

// Safe returns a copy of s with the transient code scrubbed.
func (s Session) Safe() Session {
	s.Code = ""
	return s
}

// MarshalSnapshot encodes the scrubbed session for persistence.
func (s Session) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(s.Safe())
}

// UnmarshalSnapshot decodes a persisted session. Malformed JSON and unknown
// stages are errors; the code field is always dropped.
func UnmarshalSnapshot(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if !s.Stage.Valid() {
		return Session{}, fmt.Errorf("decoding snapshot: unknown stage %q", s.Stage)
	}
	return s.Safe(), nil
}

// Sanitize clamps a restored session into a state the machine can render
// for a game with riddleCount riddles.
func (s Session) Sanitize(riddleCount int) Session {
	s = s.Safe()
	if riddleCount <= 0 {
		return DefaultSession()
	}
	if s.RiddleIndex < 0 {
		s.RiddleIndex = 0
	}
	if s.RiddleIndex >= riddleCount {
		s.RiddleIndex = riddleCount - 1
	}
	if (s.Stage == StageRiddles || s.Stage == StageSuccess) && s.Name == "" {
		s.Stage = StageLogin
		s.RiddleIndex = 0
	}
	if s.Stage == StageBoot || s.Stage == StageLogin {
		s.RiddleIndex = 0
	}
	return s
}
