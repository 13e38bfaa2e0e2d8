package output

import "strings"

// Bar renders a fixed-width gauge of value out of total.
type Bar struct {
	width int
}

// NewBar creates a bar of width cells; width below 1 selects 30.
func NewBar(width int) Bar {
	if width < 1 {
		width = 30
	}
	return Bar{width: width}
}

// Render returns the gauge, clamping value to [0, total].
func (b Bar) Render(value, total int) string {
	filled := 0
	if total > 0 {
		if value > total {
			value = total
		}
		if value > 0 {
			filled = b.width * value / total
		}
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", b.width-filled) + "]"
}
