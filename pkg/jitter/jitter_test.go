package jitter

import (
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(time.Second, 30*time.Second, tt.attempt); got != tt.want {
			t.Errorf("Backoff(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDurationWithRand(t *testing.T) {
	if got := DurationWithRand(time.Second, 0.5, func() float64 { return 0.5 }); got != 1250*time.Millisecond {
		t.Errorf("got %v", got)
	}
	if got := DurationWithRand(time.Second, 0, func() float64 { return 0.9 }); got != time.Second {
		t.Errorf("zero factor changed duration: %v", got)
	}
}

func TestExponentialBackoffRange(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		base := Backoff(500*time.Millisecond, 5*time.Second, attempt)
		got := ExponentialBackoff(500*time.Millisecond, 5*time.Second, attempt, DefaultJitter)
		if got < base || got > base+base/2 {
			t.Errorf("attempt %d: %v outside [%v, %v]", attempt, got, base, base+base/2)
		}
	}
}
