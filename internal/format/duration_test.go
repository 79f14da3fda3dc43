package format

import (
	"math"
	"testing"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "0:00"},
		{"seconds only", 42, "0:42"},
		{"minutes", 125, "2:05"},
		{"just under an hour", 3599, "59:59"},
		{"one hour", 3600, "1:00:00"},
		{"long episode", 5025, "1:23:45"},
		{"fractional truncates", 89.9, "1:29"},
		{"negative", -5, "0:00"},
		{"nan", math.NaN(), "0:00"},
		{"infinite", math.Inf(1), "0:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Duration(tc.seconds); got != tc.want {
				t.Errorf("Duration(%v) = %q, want %q", tc.seconds, got, tc.want)
			}
		})
	}
}

func TestClock(t *testing.T) {
	if got := Clock(65, 180); got != "1:05 / 3:00" {
		t.Errorf("Clock(65, 180) = %q, want 1:05 / 3:00", got)
	}
	if got := Clock(10, 0); got != "0:10 / --:--" {
		t.Errorf("Clock(10, 0) = %q, want 0:10 / --:--", got)
	}
	if got := Clock(10, math.NaN()); got != "0:10 / --:--" {
		t.Errorf("Clock with NaN duration = %q, want 0:10 / --:--", got)
	}
}
