package format

import (
	"fmt"
	"math"
)

// Duration renders a position or duration in seconds as "m:ss", or "h:mm:ss"
// once it reaches an hour. Negative, NaN and infinite inputs render as 0:00.
func Duration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Clock renders "position / duration" for the player bar. An unknown duration
// (zero or NaN) renders as "--:--".
func Clock(position, duration float64) string {
	if duration <= 0 || math.IsNaN(duration) {
		return Duration(position) + " / --:--"
	}
	return Duration(position) + " / " + Duration(duration)
}
