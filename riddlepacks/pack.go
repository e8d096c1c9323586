package riddlepacks

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vaulttec/vault131/internal/vault/domain"
)

// ErrUnknownPack is returned by Load for a name with no embedded pack.
var ErrUnknownPack = errors.New("unknown riddle pack")

// Riddle is one prompt and its accepted answers.
type Riddle struct {
	Prompt  string   `yaml:"prompt" mapstructure:"prompt"`
	Answers []string `yaml:"answers" mapstructure:"answers"`
}

// Pack is a named, ordered list of riddles.
type Pack struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Riddles     []Riddle `yaml:"riddles"`
}

// Parse decodes and validates a pack document. Unknown fields are rejected
// so typos like "answer:" surface instead of silently yielding no answers.
func Parse(data []byte) (Pack, error) {
	var p Pack
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Pack{}, fmt.Errorf("parsing riddle pack: %w", err)
	}
	if err := Validate(p.Riddles); err != nil {
		if p.Name != "" {
			return Pack{}, fmt.Errorf("riddle pack %s: %w", p.Name, err)
		}
		return Pack{}, err
	}
	return p, nil
}

// LoadFile parses a pack from disk. A file without a name takes its base
// name.
func LoadFile(file string) (Pack, error) {
	data, err := os.ReadFile(file) //nolint:gosec // operator-supplied path
	if err != nil {
		return Pack{}, fmt.Errorf("reading riddle pack: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return Pack{}, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(path.Base(file), path.Ext(file))
	}
	return p, nil
}

// Load returns the embedded pack with the given name.
func Load(name string) (Pack, error) {
	if name == "" {
		name = DefaultPack
	}
	data, err := fs.ReadFile(packFiles, "packs/"+name+".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return Pack{}, fmt.Errorf("%w: %q", ErrUnknownPack, name)
	}
	if err != nil {
		return Pack{}, err
	}
	p, err := Parse(data)
	if err != nil {
		return Pack{}, err
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// Names lists the embedded packs in alphabetical order.
func Names() []string {
	entries, err := fs.ReadDir(packFiles, "packs")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Validate checks that there is at least one riddle and that every riddle
// has a prompt and an answer that can actually be typed.
func Validate(riddles []Riddle) error {
	if len(riddles) == 0 {
		return errors.New("at least one riddle is required")
	}
	for i, r := range riddles {
		if strings.TrimSpace(r.Prompt) == "" {
			return fmt.Errorf("riddle %d: prompt is required", i+1)
		}
		usable := false
		for _, a := range r.Answers {
			if domain.Normalize(a) != "" {
				usable = true
				break
			}
		}
		if !usable {
			return fmt.Errorf("riddle %d: at least one answer with letters or digits is required", i+1)
		}
	}
	return nil
}

// ToDomain converts riddles into the immutable form the session uses.
func ToDomain(riddles []Riddle) []domain.Riddle {
	out := make([]domain.Riddle, 0, len(riddles))
	for _, r := range riddles {
		out = append(out, domain.NewRiddle(r.Prompt, r.Answers...))
	}
	return out
}
