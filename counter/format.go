package counter

import (
	"fmt"
)

// DisplayCap is the largest badge value rendered literally. Larger values
// render as "99+".
const DisplayCap = 99

// Format converts a badge count into its two digit display string.
func Format(value int) string {
	if value < 0 {
		value = 0
	}
	if Overflows(value) {
		return fmt.Sprintf("%02d+", DisplayCap)
	}
	return fmt.Sprintf("%02d", value)
}

// Overflows reports whether value is above DisplayCap.
func Overflows(value int) bool {
	return value > DisplayCap
}
