// Package riddlepacks embeds the built-in riddle packs and parses pack files.
//
// Packs are YAML documents compiled into the binary from the packs
// directory. Operators can also point the config at a pack file on disk,
// which is parsed with the same rules.
package riddlepacks

import (
	"embed"
	"io/fs"
)

// DefaultPack is used when the config names no pack.
const DefaultPack = "wasteland"

//go:embed packs
var packFiles embed.FS

// FS returns the embedded filesystem holding packs/<name>.yaml.
func FS() fs.FS {
	return packFiles
}
