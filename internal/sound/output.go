package sound

import (
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// ErrOutputClosed is returned when resuming an output that was never
// initialized or has been closed.
var ErrOutputClosed = errors.New("audio output not initialized")

// Output is the shared audio device every sound is mixed into.
type Output interface {
	// Init opens the device at the given rate. Calling it again on an open
	// output is a no-op.
	Init(sr beep.SampleRate) error
	// Resume restarts a device the host suspended.
	Resume() error
	Play(s beep.Streamer)
	// Lock and Unlock guard mutation of streamers that are already playing.
	Lock()
	Unlock()
	SampleRate() beep.SampleRate
	Close() error
}

// SpeakerOutput plays through the gopxl/beep speaker. The speaker is a
// process singleton so only one SpeakerOutput should be opened.
type SpeakerOutput struct {
	mu      sync.Mutex
	latency time.Duration
	sr      beep.SampleRate
	open    bool
}

// NewSpeakerOutput returns an unopened output with the given buffer latency.
func NewSpeakerOutput(latency time.Duration) *SpeakerOutput {
	if latency <= 0 {
		latency = 100 * time.Millisecond
	}
	return &SpeakerOutput{latency: latency}
}

func (o *SpeakerOutput) Init(sr beep.SampleRate) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.open {
		return nil
	}
	if err := speaker.Init(sr, sr.N(o.latency)); err != nil {
		return err
	}
	o.sr = sr
	o.open = true
	return nil
}

func (o *SpeakerOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.open {
		return ErrOutputClosed
	}
	return speaker.Resume()
}

func (o *SpeakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

func (o *SpeakerOutput) Lock() { speaker.Lock() }

func (o *SpeakerOutput) Unlock() { speaker.Unlock() }

func (o *SpeakerOutput) SampleRate() beep.SampleRate {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sr
}

func (o *SpeakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.open {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	o.open = false
	return nil
}
