package domain

import (
	"strings"
	"unicode"
)

// Riddle is a prompt plus the answers that solve it. Riddles are immutable
// once constructed.
type Riddle struct {
	prompt  string
	answers []string
}

// NewRiddle creates a riddle, copying answers.
func NewRiddle(prompt string, answers ...string) Riddle {
	return Riddle{
		prompt:  prompt,
		answers: append([]string(nil), answers...),
	}
}

// Prompt returns the riddle text shown to the visitor.
func (r Riddle) Prompt() string { return r.prompt }

// Answers returns a copy of the accepted answers.
func (r Riddle) Answers() []string { return append([]string(nil), r.answers...) }

// Accepts reports whether input matches one of the accepted answers after
// both sides are normalized.
func (r Riddle) Accepts(input string) bool {
	got := Normalize(input)
	if got == "" {
		return false
	}
	for _, a := range r.answers {
		if Normalize(a) == got {
			return true
		}
	}
	return false
}

// Normalize folds an answer into its comparable form: lowercase, only
// letters a-z, digits, hyphens and single spaces, trimmed.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
