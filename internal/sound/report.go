package sound

import (
	"errors"
	"strings"
)

// Step names recorded while enabling.
const (
	StepAcquire    = "acquire-context"
	stepLoadPrefix = "load:"
)

// Device operations that can fail while acquiring the output.
const (
	DeviceOpen   = "open"
	DeviceResume = "resume"
)

// DeviceError reports which device operation failed during acquire.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return e.Op + " audio output: " + e.Err.Error()
}

func (e *DeviceError) Unwrap() error { return e.Err }

// StepOutcome is the result of one enable step.
type StepOutcome struct {
	Step  string
	Asset string
	Err   error
}

// OK reports whether the step succeeded.
func (s StepOutcome) OK() bool { return s.Err == nil }

// Action is what a Report describes.
type Action string

const (
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
)

// Report summarizes an enable or disable request.
type Report struct {
	Action Action
	Steps  []StepOutcome
	State  State

	// Fatal is set when the device could not be acquired.
	Fatal bool
	// Cancelled is set when a disable overtook this enable.
	Cancelled bool
	// Pending is set when another enable was already in flight.
	Pending bool
	// Cached is set when every asset was already decoded.
	Cached bool
}

// Missing lists the sound roles whose assets failed to load.
func (r Report) Missing() []string {
	var roles []string
	for _, s := range r.Steps {
		if s.OK() {
			continue
		}
		if role, ok := strings.CutPrefix(s.Step, stepLoadPrefix); ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// Status renders the report as a line for the status bar.
func (r Report) Status() string {
	switch {
	case r.Action == ActionDisable:
		return "Audio disabled."
	case r.Fatal:
		return "Audio failed: " + r.fatalCause() + "."
	case r.Cancelled:
		return "Audio enable cancelled."
	case r.Pending:
		return "Audio is starting…"
	}
	if missing := r.Missing(); len(missing) > 0 {
		return "Audio enabled (missing: " + strings.Join(missing, ", ") + ")."
	}
	return "Audio enabled."
}

// fatalCause names the acquire operation that failed.
func (r Report) fatalCause() string {
	for _, s := range r.Steps {
		if s.OK() {
			continue
		}
		var de *DeviceError
		if errors.As(s.Err, &de) {
			return "could not " + de.Op + " audio device"
		}
		return "could not acquire audio device"
	}
	return "could not open audio device"
}

// Label is the toggle caption for the state the report left behind.
func (r Report) Label() string {
	return r.State.Label()
}
