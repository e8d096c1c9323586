package sound

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vaulttec/vault131/internal/log"
)

// State is the engine lifecycle.
type State int32

const (
	Disabled State = iota
	Enabling
	Enabled
)

func (s State) String() string {
	switch s {
	case Enabling:
		return "enabling"
	case Enabled:
		return "enabled"
	default:
		return "disabled"
	}
}

// Label is the caption of the audio toggle button.
func (s State) Label() string {
	if s == Enabled {
		return "AUDIO: ON"
	}
	return "AUDIO: OFF"
}

// DefaultSampleRate is used when opening the output.
const DefaultSampleRate beep.SampleRate = 44100

// resampleQuality trades CPU for fidelity in beep.Resample.
const resampleQuality = 4

// Tuning holds the gains, jitter ranges and throttle window.
type Tuning struct {
	HumGain           float64
	BeepVolume        float64
	SFXGain           float64
	KeystrokeThrottle time.Duration
	RateJitterMin     float64
	RateJitterMax     float64
	VolumeJitterMin   float64
	VolumeJitterMax   float64
}

// DefaultTuning returns the stock mix.
func DefaultTuning() Tuning {
	return Tuning{
		HumGain:           0.18,
		BeepVolume:        0.22,
		SFXGain:           0.9,
		KeystrokeThrottle: 55 * time.Millisecond,
		RateJitterMin:     0.95,
		RateJitterMax:     1.07,
		VolumeJitterMin:   0.11,
		VolumeJitterMax:   0.21,
	}
}

// Assets names the files for each sound role.
type Assets struct {
	Hum    string
	Beep   string
	Typing []string
}

// DefaultAssets matches the files bundled in the binary.
func DefaultAssets() Assets {
	return Assets{
		Hum:    "crt-hum.wav",
		Beep:   "ui-beep.wav",
		Typing: []string{"type1.wav", "type2.wav", "type3.wav"},
	}
}

// sharedBuffers holds decoded assets for the life of the process.
var sharedBuffers = gocache.New(gocache.NoExpiration, 0)

// Engine owns the output device, the decoded buffers and the hum loop.
// All methods are safe for concurrent use.
type Engine struct {
	out     Output
	fetch   Fetcher
	assets  Assets
	tuning  Tuning
	rate    beep.SampleRate
	buffers *gocache.Cache
	now     func() time.Time
	rng     *rand.Rand
	tracer  trace.Tracer

	mu         sync.Mutex
	state      State
	generation uint64
	hum        *beep.Ctrl
	lastType   int
	lastTypeAt time.Time
	beepTone   *beep.Buffer
	clickTone  *beep.Buffer
}

// Option configures an Engine.
type Option func(*Engine)

func WithTuning(t Tuning) Option { return func(e *Engine) { e.tuning = t } }

func WithAssets(a Assets) Option { return func(e *Engine) { e.assets = a } }

func WithSampleRate(sr beep.SampleRate) Option { return func(e *Engine) { e.rate = sr } }

// WithClock replaces time.Now for the keystroke throttle.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithRand(r *rand.Rand) Option { return func(e *Engine) { e.rng = r } }

// WithCache gives the engine a private buffer cache instead of the
// process-wide one.
func WithCache(c *gocache.Cache) Option { return func(e *Engine) { e.buffers = c } }

// NewEngine returns a Disabled engine. Nothing is opened or fetched until
// Enable.
func NewEngine(out Output, fetch Fetcher, opts ...Option) *Engine {
	e := &Engine{
		out:      out,
		fetch:    fetch,
		assets:   DefaultAssets(),
		tuning:   DefaultTuning(),
		rate:     DefaultSampleRate,
		buffers:  sharedBuffers,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 131)),
		tracer:   otel.Tracer("vault131/sound"),
		lastType: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Toggle disables an enabled or enabling engine and enables a disabled one.
func (e *Engine) Toggle(ctx context.Context) Report {
	if e.State() == Disabled {
		return e.Enable(ctx)
	}
	return e.Disable()
}

// Enable acquires the output, loads any assets not yet decoded and starts
// the hum loop. It blocks until loading finishes. Asset failures are
// recorded in the report but do not stop the engine from enabling; only a
// failure to acquire the output does.
func (e *Engine) Enable(ctx context.Context) Report {
	ctx, span := e.tracer.Start(ctx, "audio.enable")
	defer span.End()

	e.mu.Lock()
	if e.state != Disabled {
		report := Report{Action: ActionEnable, State: e.state, Pending: e.state == Enabling}
		e.mu.Unlock()
		return report
	}
	e.state = Enabling
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	report := Report{Action: ActionEnable}

	acquire := e.step(ctx, StepAcquire, "", e.acquire)
	report.Steps = append(report.Steps, acquire)
	if !acquire.OK() {
		e.mu.Lock()
		if e.generation == gen {
			e.state = Disabled
			e.stopHumLocked()
		}
		report.State = e.state
		e.mu.Unlock()

		report.Fatal = true
		span.SetStatus(codes.Error, "acquire failed")
		log.ErrorErr(log.CatAudio, "Audio device unavailable", acquire.Err)
		return report
	}

	report.Cached = true
	for _, job := range e.loadJobs() {
		if _, ok := e.buffers.Get(job.asset); ok {
			continue
		}
		report.Cached = false
		name := job.asset
		outcome := e.step(ctx, stepLoadPrefix+job.role, name, func(ctx context.Context) error {
			return e.load(ctx, name)
		})
		if !outcome.OK() {
			log.Warn(log.CatAudio, "Sound asset unavailable", "asset", name, "error", outcome.Err)
		}
		report.Steps = append(report.Steps, outcome)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen || e.state != Enabling {
		report.Cancelled = true
		report.State = e.state
		span.SetAttributes(attribute.Bool("cancelled", true))
		log.Debug(log.CatAudio, "Enable superseded by disable")
		return report
	}
	e.state = Enabled
	e.startHumLocked()
	e.playConfirmationLocked()
	report.State = Enabled
	span.SetAttributes(attribute.StringSlice("missing", report.Missing()))
	log.Info(log.CatAudio, "Audio enabled", "missing", report.Missing(), "cached", report.Cached)
	return report
}

// Disable stops the hum and suppresses all playback. The output stays
// open so a later Enable is fast. An enable still loading will not start
// the hum when it finishes.
func (e *Engine) Disable() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.state = Disabled
	e.stopHumLocked()
	log.Debug(log.CatAudio, "Audio disabled")
	return Report{Action: ActionDisable, State: Disabled}
}

// Close disables the engine and releases the output.
func (e *Engine) Close() error {
	e.Disable()
	return e.out.Close()
}

// PlayConfirmation plays the confirmation beep. It returns false when the
// engine is not enabled.
func (e *Engine) PlayConfirmation() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Enabled {
		return false
	}
	e.playConfirmationLocked()
	return true
}

// PlayKeystroke plays one typing clip unless another played within the
// throttle window. Throttled calls are dropped and return false.
func (e *Engine) PlayKeystroke() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Enabled {
		return false
	}

	now := e.now()
	if !e.lastTypeAt.IsZero() && now.Sub(e.lastTypeAt) < e.tuning.KeystrokeThrottle {
		return false
	}
	e.lastTypeAt = now

	clips := e.typingBuffers()
	if len(clips) == 0 {
		if e.clickTone == nil {
			e.clickTone = fallbackClick(e.rate)
		}
		clips = []*beep.Buffer{e.clickTone}
	}

	idx := e.rng.IntN(len(clips))
	if len(clips) > 1 && idx == e.lastType {
		idx = (idx + 1) % len(clips)
	}
	e.lastType = idx

	rate := e.jitter(e.tuning.RateJitterMin, e.tuning.RateJitterMax)
	volume := e.jitter(e.tuning.VolumeJitterMin, e.tuning.VolumeJitterMax)
	e.playLocked(clips[idx], rate, volume*e.tuning.SFXGain)
	return true
}

type loadJob struct {
	role  string
	asset string
}

func (e *Engine) loadJobs() []loadJob {
	jobs := []loadJob{
		{role: "hum", asset: e.assets.Hum},
		{role: "beep", asset: e.assets.Beep},
	}
	for i, name := range e.assets.Typing {
		jobs = append(jobs, loadJob{role: "type" + strconv.Itoa(i+1), asset: name})
	}
	return jobs
}

func (e *Engine) step(ctx context.Context, name, asset string, fn func(context.Context) error) StepOutcome {
	ctx, span := e.tracer.Start(ctx, name)
	defer span.End()
	if asset != "" {
		span.SetAttributes(attribute.String("asset", asset))
	}

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return StepOutcome{Step: name, Asset: asset, Err: err}
}

func (e *Engine) acquire(context.Context) error {
	if err := e.out.Init(e.rate); err != nil {
		return &DeviceError{Op: DeviceOpen, Err: err}
	}
	if err := e.out.Resume(); err != nil {
		return &DeviceError{Op: DeviceResume, Err: err}
	}
	return nil
}

func (e *Engine) load(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("no asset configured")
	}
	data, err := e.fetch.Fetch(ctx, name)
	if err != nil {
		return err
	}
	buf, err := decode(name, data)
	if err != nil {
		return err
	}
	e.buffers.Set(name, buf, gocache.NoExpiration)
	return nil
}

func (e *Engine) buffer(name string) *beep.Buffer {
	if name == "" {
		return nil
	}
	v, ok := e.buffers.Get(name)
	if !ok {
		return nil
	}
	buf, _ := v.(*beep.Buffer)
	return buf
}

func (e *Engine) typingBuffers() []*beep.Buffer {
	var clips []*beep.Buffer
	for _, name := range e.assets.Typing {
		if buf := e.buffer(name); buf != nil {
			clips = append(clips, buf)
		}
	}
	return clips
}

func (e *Engine) jitter(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + e.rng.Float64()*(hi-lo)
}

func (e *Engine) playConfirmationLocked() {
	buf := e.buffer(e.assets.Beep)
	if buf == nil {
		if e.beepTone == nil {
			e.beepTone = fallbackBeep(e.rate)
		}
		buf = e.beepTone
	}
	e.playLocked(buf, 1.0, e.tuning.BeepVolume*e.tuning.SFXGain)
}

func (e *Engine) playLocked(buf *beep.Buffer, rate, gain float64) {
	s := e.atOutputRate(buf.Streamer(0, buf.Len()), buf.Format().SampleRate, rate)
	e.out.Play(withGain(s, gain))
}

// startHumLocked replaces any running hum with a fresh infinite loop.
func (e *Engine) startHumLocked() {
	e.stopHumLocked()
	buf := e.buffer(e.assets.Hum)
	if buf == nil {
		return
	}
	loop := beep.Loop(-1, buf.Streamer(0, buf.Len()))
	ctrl := &beep.Ctrl{Streamer: e.atOutputRate(loop, buf.Format().SampleRate, 1.0)}
	e.hum = ctrl
	e.out.Play(withGain(ctrl, e.tuning.HumGain))
}

func (e *Engine) stopHumLocked() {
	if e.hum == nil {
		return
	}
	e.out.Lock()
	e.hum.Streamer = nil
	e.out.Unlock()
	e.hum = nil
}

func (e *Engine) atOutputRate(s beep.Streamer, from beep.SampleRate, rate float64) beep.Streamer {
	to := e.out.SampleRate()
	if to == 0 {
		to = e.rate
	}
	ratio := rate * float64(from) / float64(to)
	if math.Abs(ratio-1) < 1e-9 {
		return s
	}
	return beep.ResampleRatio(resampleQuality, ratio, s)
}

// withGain scales a streamer by a linear gain.
func withGain(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// Feedback adapts an Engine to callers that only fire intents. A nil
// engine makes every call a no-op.
type Feedback struct {
	Engine *Engine
}

func (f Feedback) PlayConfirmation() {
	if f.Engine != nil {
		f.Engine.PlayConfirmation()
	}
}

func (f Feedback) PlayKeystroke() {
	if f.Engine != nil {
		f.Engine.PlayKeystroke()
	}
}

func (f Feedback) Disable() {
	if f.Engine != nil {
		f.Engine.Disable()
	}
}
