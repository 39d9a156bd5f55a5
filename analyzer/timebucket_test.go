package analyzer

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestBucketOf(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	tests := []struct {
		name    string
		ts      time.Time
		loc     *time.Location
		hour    string
		weekday string
	}{
		{
			name:    "fixed offset crosses midnight",
			ts:      time.Date(2023, 6, 15, 23, 30, 0, 0, time.UTC),
			loc:     time.FixedZone("UTC+2", 2*60*60),
			hour:    "1h",
			weekday: "Fri",
		},
		{
			name:    "nil location is UTC",
			ts:      time.Date(2023, 6, 18, 0, 5, 0, 0, time.UTC),
			loc:     nil,
			hour:    "0h",
			weekday: "Sun",
		},
		{
			name:    "summer time offset",
			ts:      time.Date(2023, 7, 3, 12, 0, 0, 0, time.UTC),
			loc:     newYork,
			hour:    "8h",
			weekday: "Mon",
		},
		{
			name:    "winter time offset",
			ts:      time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC),
			loc:     newYork,
			hour:    "7h",
			weekday: "Mon",
		},
		{
			name:    "negative offset goes back a day",
			ts:      time.Date(2023, 1, 2, 3, 0, 0, 0, time.UTC),
			loc:     newYork,
			hour:    "22h",
			weekday: "Sun",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BucketOf(tt.ts, tt.loc)
			if got.Hour != tt.hour || got.Weekday != tt.weekday {
				t.Errorf("BucketOf() = %s/%s, want %s/%s", got.Hour, got.Weekday, tt.hour, tt.weekday)
			}
		})
	}
}
