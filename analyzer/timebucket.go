package analyzer

import (
	"time"

	"discord-analyzer/models"
)

// Bucket is the local hour-of-day and weekday slot of a message.
type Bucket struct {
	Hour    string // "0h".."23h"
	Weekday string // Mon..Sun
}

// BucketOf converts ts into loc's wall clock, applying the zone's offset at
// that instant. A nil loc means UTC.
func BucketOf(ts time.Time, loc *time.Location) Bucket {
	if loc == nil {
		loc = time.UTC
	}
	t := ts.In(loc)
	// time.Weekday starts on Sunday.
	day := (int(t.Weekday()) + 6) % 7
	return Bucket{
		Hour:    models.HourLabels[t.Hour()],
		Weekday: models.Weekdays[day],
	}
}
