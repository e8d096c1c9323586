// Package sound is the terminal's audio engine: an ambient hum loop, a
// confirmation beep and throttled keystroke ticks, played through a shared
// output that is acquired on demand.
package sound

import (
	"embed"
	"io/fs"
)

//go:embed sounds/*.wav
var soundFiles embed.FS

// EmbeddedAssets returns the bundled sound files rooted at the sounds
// directory, so asset paths are bare file names like "crt-hum.wav".
func EmbeddedAssets() fs.FS {
	sub, err := fs.Sub(soundFiles, "sounds")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}
