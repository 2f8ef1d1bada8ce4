package indicator

import (
	"time"

	"github.com/ncruces/go-strftime"
)

// Clock label layouts. Hours are space padded, so 12-hour labels before
// ten o'clock start with a blank.
const (
	Layout12 = "%l:%M %p"
	Layout24 = "%k:%M"
)

// ClockLabel formats t for the center of the indicator.
func ClockLabel(t time.Time, use24Hour bool) string {
	if use24Hour {
		return strftime.Format(Layout24, t)
	}
	return strftime.Format(Layout12, t)
}

// LabelFunc returns a ClockLabel bound to the configured format.
func LabelFunc(use24Hour bool) func(time.Time) string {
	return func(t time.Time) string {
		return ClockLabel(t, use24Hour)
	}
}
