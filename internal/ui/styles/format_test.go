package styles

import "testing"

func TestFormatRiddleHeading(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected string
	}{
		{"first", 1, 5, "RIDDLE 1 OF 5"},
		{"last", 5, 5, "RIDDLE 5 OF 5"},
		{"no riddles", 1, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRiddleHeading(tt.current, tt.total)
			if got != tt.expected {
				t.Errorf("FormatRiddleHeading(%d, %d) = %q, want %q",
					tt.current, tt.total, got, tt.expected)
			}
		})
	}
}

func TestProgressPips(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected string
	}{
		{"nothing solved", 1, 5, "□□□□□"},
		{"two solved", 3, 5, "■■□□□"},
		{"all solved", 6, 5, "■■■■■"},
		{"clamped past end", 9, 3, "■■■"},
		{"clamped before start", 0, 3, "□□□"},
		{"no riddles", 1, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProgressPips(tt.current, tt.total)
			if got != tt.expected {
				t.Errorf("ProgressPips(%d, %d) = %q, want %q",
					tt.current, tt.total, got, tt.expected)
			}
		})
	}
}
