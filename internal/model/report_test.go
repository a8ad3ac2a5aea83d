package model

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		now  time.Time
		want int
	}{
		{due, 0},
		{due.Add(23 * time.Hour), 0},
		{due.Add(24 * time.Hour), 1},
		{due.Add(10*24*time.Hour + time.Minute), 10},
		{due.Add(-time.Hour), -1},
	}
	for _, tt := range tests {
		if got := DaysBetween(due, tt.now); got != tt.want {
			t.Errorf("DaysBetween(%v, %v) = %d, want %d", due, tt.now, got, tt.want)
		}
	}
}
