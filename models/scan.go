package models

import "time"

// ScanVersion tags the scan format this build reads and writes.
const ScanVersion = "1.0"

// Scan is the raw per-channel message log of one server, produced by the
// scanner and consumed by the analyzer.
type Scan struct {
	Version  string        `json:"version"`
	Server   Server        `json:"server"`
	Channels []*ChannelLog `json:"channels"`
	Roles    []Role        `json:"roles"`
}

// Server identifies the scanned guild.
type Server struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role maps a role name to the names of the members holding it.
type Role struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ChannelLog holds the scanned messages of one channel in chronological order.
type ChannelLog struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// LastScannedMessage is the timestamp of the newest message seen so far.
	// Rescans stop walking history once they reach it.
	LastScannedMessage time.Time    `json:"last_scanned_message"`
	Messages           []RawMessage `json:"messages"`
}

// RawMessage is one normalized chat message.
type RawMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
	// Content has links removed and custom emoji rewritten to :name:.
	Content     string     `json:"content"`
	Emoji       []string   `json:"emoji"`
	Reactions   []Reaction `json:"reactions"`
	Mentions    []string   `json:"mentions"`
	ReplyingTo  string     `json:"replying_to"`
	Attachments []string   `json:"attachments"`
	Links       []string   `json:"links"`
}

// Reaction lists who reacted to a message with one emoji.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
}

// NewScan returns an empty scan for the given server.
func NewScan(server Server) *Scan {
	return &Scan{Version: ScanVersion, Server: server}
}

// Channel returns the log for channel id, or nil.
func (s *Scan) Channel(id string) *ChannelLog {
	for _, c := range s.Channels {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// EnsureChannel returns the log for id, appending a new one when missing.
// The name is refreshed so renamed channels report their current name.
func (s *Scan) EnsureChannel(id, name string) *ChannelLog {
	if c := s.Channel(id); c != nil {
		c.Name = name
		return c
	}
	c := &ChannelLog{ID: id, Name: name}
	s.Channels = append(s.Channels, c)
	return c
}

// MessageCount returns the number of messages across all channels.
func (s *Scan) MessageCount() int {
	n := 0
	for _, c := range s.Channels {
		n += len(c.Messages)
	}
	return n
}

// CheckVersion fails with a *VersionError when the scan was written by an
// incompatible build.
func (s *Scan) CheckVersion() error {
	if s.Version != ScanVersion {
		return &VersionError{Kind: "scan", Got: s.Version, Want: ScanVersion}
	}
	return nil
}
