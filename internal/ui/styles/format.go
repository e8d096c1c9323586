package styles

import (
	"fmt"
	"strings"
)

// FormatRiddleHeading returns the "RIDDLE n OF m" caption. current is
// 1-based.
func FormatRiddleHeading(current, total int) string {
	if total <= 0 {
		return ""
	}
	return fmt.Sprintf("RIDDLE %d OF %d", current, total)
}

// ProgressPips renders one pip per riddle: solved ones filled, the rest
// hollow. current is the 1-based riddle being attempted.
func ProgressPips(current, total int) string {
	if total <= 0 {
		return ""
	}
	solved := min(max(current-1, 0), total)
	return strings.Repeat("■", solved) + strings.Repeat("□", total-solved)
}
