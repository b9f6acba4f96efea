package clock

import (
	"testing"
	"time"
)

func TestManual(t *testing.T) {
	// Arrange
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewManual(start)

	// Act
	c.Advance(61 * time.Second)

	// Assert
	if got := c.Now(); !got.Equal(start.Add(61 * time.Second)) {
		t.Fatalf("Now() = %v", got)
	}

	c.Set(start)
	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("Now() after Set = %v", got)
	}
}

func TestTimeClocker(t *testing.T) {
	before := time.Now()
	got := New().Now()
	if got.Before(before) {
		t.Fatalf("Now() = %v is before %v", got, before)
	}
}
