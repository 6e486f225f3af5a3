package clinic

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestResolveSlot(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		window   string
		wantHour int
		wantMin  int
	}{
		{name: "full window", date: date(2025, 11, 1), window: "08:00 - 08:30", wantHour: 8, wantMin: 0},
		{name: "afternoon window", date: date(2025, 12, 1), window: "14:30 - 15:00", wantHour: 14, wantMin: 30},
		{name: "start only", date: date(2025, 11, 1), window: "09:15", wantHour: 9, wantMin: 15},
		{name: "no spaces around dash", date: date(2025, 11, 1), window: "10:00-10:30", wantHour: 10, wantMin: 0},
		{name: "garbage defaults to 08:00", date: date(2025, 11, 1), window: "not-a-time", wantHour: 8, wantMin: 0},
		{name: "empty defaults to 08:00", date: date(2025, 11, 1), window: "", wantHour: 8, wantMin: 0},
		{name: "free text defaults to 08:00", date: date(2025, 11, 1), window: "anytime in the morning", wantHour: 8, wantMin: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ResolveSlot(tt.date, tt.window)

			wantStart := time.Date(tt.date.Year(), tt.date.Month(), tt.date.Day(), tt.wantHour, tt.wantMin, 0, 0, time.Local)
			if !start.Equal(wantStart) {
				t.Fatalf("start = %s, want %s", start, wantStart)
			}
			if got := end.Sub(start); got != VisitDuration {
				t.Fatalf("duration = %s, want %s", got, VisitDuration)
			}
		})
	}
}

func TestResolveSlotIgnoresWindowEnd(t *testing.T) {
	start, end := ResolveSlot(date(2025, 11, 1), "09:00 - 17:45")

	if start.Hour() != 9 || start.Minute() != 0 {
		t.Fatalf("start = %s, want 09:00", start)
	}
	if end.Sub(start) != 30*time.Minute {
		t.Fatalf("end component of the window must be ignored, got duration %s", end.Sub(start))
	}
}
