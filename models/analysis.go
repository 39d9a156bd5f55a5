package models

import "fmt"

// AnalysisVersion tags the analysis format this build reads and writes.
const AnalysisVersion = "1.0"

// Weekdays are the day bucket labels, Monday first.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// HourLabels are the hour bucket labels "0h".."23h".
var HourLabels = func() []string {
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = fmt.Sprintf("%dh", h)
	}
	return labels
}()

// Analysis is the aggregated statistics model of one scan.
type Analysis struct {
	Version  string                 `json:"version"`
	Timezone string                 `json:"timezone"`
	Users    Ordered[*UserStats]    `json:"users"`
	Channels Ordered[*ChannelStats] `json:"channels"`
	Emoji    Ordered[*EmojiStats]   `json:"emoji"`
	Server   *ServerStats           `json:"server"`
	Roles    []Role                 `json:"roles"`
}

// CheckVersion fails with a *VersionError when the analysis was written by
// an incompatible build.
func (a *Analysis) CheckVersion() error {
	if a.Version != AnalysisVersion {
		return &VersionError{Kind: "analysis", Got: a.Version, Want: AnalysisVersion}
	}
	return nil
}

// Role returns the role named name.
func (a *Analysis) Role(name string) (Role, bool) {
	for _, r := range a.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// UserStats holds the counters of one user.
type UserStats struct {
	Messages          int     `json:"messages"`
	CharsTyped        int     `json:"chars_typed"`
	Emoji             Counter `json:"emoji"`
	Reactions         Counter `json:"reactions"`
	ReactionsReceived Counter `json:"reactions_received"`
	MentionedBy       Counter `json:"mentioned_by"`
	Mentions          Counter `json:"mentions"`
	RepliedToBy       Counter `json:"replied_to_by"`
	Replies           Counter `json:"replies"`
	Attachments       Counter `json:"attachments"`
	Links             int     `json:"links"`
	ActiveHours       Counter `json:"active_hours"`
	ActiveDays        Counter `json:"active_days"`
}

// NewUserStats returns a zeroed record with the fixed hour/day buckets set.
func NewUserStats() *UserStats {
	return &UserStats{
		ActiveHours: NewCounter(HourLabels...),
		ActiveDays:  NewCounter(Weekdays...),
	}
}

// ChannelStats holds the counters of one channel. Every counter is keyed by
// user name except Emoji/Reactions (emoji token) and the time buckets.
type ChannelStats struct {
	Messages          Counter       `json:"messages"`
	CharsTyped        Counter       `json:"chars_typed"`
	Emoji             Counter       `json:"emoji"`
	Reactions         Counter       `json:"reactions"`
	ReactionsReceived Counter       `json:"reactions_received"`
	Mentioned         Counter       `json:"mentioned"`
	Mentions          Counter       `json:"mentions"`
	RepliedTo         Counter       `json:"replied_to"`
	Replies           Counter       `json:"replies"`
	Attachments       NestedCounter `json:"attachments"`
	Links             Counter       `json:"links"`
	ActiveHours       Counter       `json:"active_hours"`
	ActiveDays        Counter       `json:"active_days"`
}

// NewChannelStats returns a zeroed record with the fixed hour/day buckets set.
func NewChannelStats() *ChannelStats {
	return &ChannelStats{
		ActiveHours: NewCounter(HourLabels...),
		ActiveDays:  NewCounter(Weekdays...),
	}
}

// ServerStats aggregates every channel of the scan.
type ServerStats struct {
	Name string `json:"name"`
	ChannelStats
}

// NewServerStats returns a zeroed server record.
func NewServerStats(name string) *ServerStats {
	return &ServerStats{Name: name, ChannelStats: *NewChannelStats()}
}

// EmojiStats holds the per-user usage of one emoji token.
type EmojiStats struct {
	InMessage         Counter `json:"in_message"`
	ReactionsGiven    Counter `json:"reactions_given"`
	ReactionsReceived Counter `json:"reactions_received"`
}
