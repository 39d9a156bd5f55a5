package query

import (
	"fmt"
	"time"

	"discord-analyzer/models"
)

// Field is one labelled total of a subject summary.
type Field struct {
	Label string
	Value Value
}

// UserSummary returns the headline totals of user name.
func (e *Engine) UserSummary(name string) ([]Field, error) {
	u, ok := e.a.Users.Get(name)
	if !ok {
		return nil, fmt.Errorf("user summary: %w: user %q", ErrUnknownSubject, name)
	}
	return []Field{
		{"Messages", Int(u.Messages)},
		{"Characters typed", Int(u.CharsTyped)},
		{"Characters per message", ratio(u.CharsTyped, u.Messages)},
		{"Emoji used", Int(u.Emoji.Total())},
		{"Reactions", Int(u.Reactions.Total())},
		{"Reactions received", Int(u.ReactionsReceived.Total())},
		{"Mentions", Int(u.Mentions.Total())},
		{"Times mentioned", Int(u.MentionedBy.Total())},
		{"Replies", Int(u.Replies.Total())},
		{"Times replied to", Int(u.RepliedToBy.Total())},
		{"Links", Int(u.Links)},
		{"Attachments", Int(u.Attachments.Total())},
	}, nil
}

// ChannelSummary returns the headline totals of channel name.
func (e *Engine) ChannelSummary(name string) ([]Field, error) {
	c, ok := e.a.Channels.Get(name)
	if !ok {
		return nil, fmt.Errorf("channel summary: %w: channel %q", ErrUnknownSubject, name)
	}
	return channelSummary(c), nil
}

// ServerSummary returns the headline totals of the server.
func (e *Engine) ServerSummary() []Field {
	return channelSummary(&e.a.Server.ChannelStats)
}

func channelSummary(c *models.ChannelStats) []Field {
	return []Field{
		{"Messages", Int(c.Messages.Total())},
		{"Characters typed", Int(c.CharsTyped.Total())},
		{"Characters per message", ratio(c.CharsTyped.Total(), c.Messages.Total())},
		{"Emoji used", Int(c.Emoji.Total())},
		{"Reactions", Int(c.Reactions.Total())},
		{"Mentions", Int(c.Mentions.Total())},
		{"Replies", Int(c.Replies.Total())},
		{"Links", Int(c.Links.Total())},
		{"Attachments", Int(c.Attachments.Total())},
	}
}

// Scope says which kind of subject a report is about.
type Scope string

const (
	ScopeServer  Scope = "server"
	ScopeChannel Scope = "channel"
	ScopeUser    Scope = "user"
)

// Activity returns the hour and weekday buckets of a subject. name is
// ignored for ScopeServer.
func (e *Engine) Activity(scope Scope, name string) (hours, days *models.Counter, err error) {
	switch scope {
	case ScopeServer:
		return &e.a.Server.ActiveHours, &e.a.Server.ActiveDays, nil
	case ScopeChannel:
		c, ok := e.a.Channels.Get(name)
		if !ok {
			return nil, nil, fmt.Errorf("activity: %w: channel %q", ErrUnknownSubject, name)
		}
		return &c.ActiveHours, &c.ActiveDays, nil
	case ScopeUser:
		u, ok := e.a.Users.Get(name)
		if !ok {
			return nil, nil, fmt.Errorf("activity: %w: user %q", ErrUnknownSubject, name)
		}
		return &u.ActiveHours, &u.ActiveDays, nil
	}
	return nil, nil, fmt.Errorf("activity: %w: scope %q", ErrUnknownSubject, scope)
}

// HourSeries turns hour buckets into chart points. With twelveHour the
// labels read "12 AM", "1 AM" .. "11 PM".
func HourSeries(hours *models.Counter, twelveHour bool) []Point {
	out := make([]Point, 0, hours.Len())
	for _, key := range hours.Keys() {
		label := key
		if twelveHour {
			var h int
			if _, err := fmt.Sscanf(key, "%dh", &h); err == nil {
				label = time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("3 PM")
			}
		}
		out = append(out, Point{Label: label, Value: float64(hours.Get(key))})
	}
	return out
}

// DaySeries turns weekday buckets into chart points.
func DaySeries(days *models.Counter) []Point {
	out := make([]Point, 0, days.Len())
	for _, key := range days.Keys() {
		out = append(out, Point{Label: key, Value: float64(days.Get(key))})
	}
	return out
}
