package sound

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
)

// synthTick renders an exponentially decaying sine. It stands in for a
// decoded asset when the file could not be loaded.
func synthTick(sr beep.SampleRate, freq float64, d time.Duration, decay float64) *beep.Buffer {
	total := sr.N(d)
	pos := 0
	gen := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for n < len(samples) && pos < total {
			t := float64(pos) / float64(sr)
			v := 0.5 * math.Sin(2*math.Pi*freq*t) * math.Exp(-t*decay)
			samples[n][0], samples[n][1] = v, v
			n++
			pos++
		}
		return n, true
	})

	buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	buf.Append(gen)
	return buf
}

func fallbackBeep(sr beep.SampleRate) *beep.Buffer {
	return synthTick(sr, 880, 120*time.Millisecond, 25)
}

func fallbackClick(sr beep.SampleRate) *beep.Buffer {
	return synthTick(sr, 1900, 30*time.Millisecond, 140)
}
