package query

import (
	"fmt"

	"discord-analyzer/models"
)

// MaxRankRows caps the length of a rank table.
const MaxRankRows = 10

// Rank names one rank table column.
type Rank string

const (
	RankMessageSender     Rank = "Message sender"
	RankCharacterTyper    Rank = "Character typer"
	RankEmojiUsed         Rank = "Emoji used"
	RankReaction          Rank = "Reaction"
	RankOverallEmoji      Rank = "Overall emoji"
	RankReactionsReceived Rank = "Reactions received"
	RankMentioner         Rank = "Mentioner"
	RankMentioned         Rank = "Mentioned"
	RankMentionedBy       Rank = "Mentioned by"
	RankReplier           Rank = "Replier"
	RankReplied           Rank = "Replied"
	RankRepliedTo         Rank = "Replied to"
	RankRepliedToBy       Rank = "Replied to by"
	RankLinkSender        Rank = "Link sender"
	RankAttachmentSender  Rank = "Attachment sender"
	RankAttachmentType    Rank = "Attachment type"
)

// UserRankColumns lists the rank columns available for one user.
var UserRankColumns = []Rank{
	RankEmojiUsed, RankReaction, RankOverallEmoji, RankReactionsReceived,
	RankMentioned, RankMentionedBy, RankReplied, RankRepliedToBy, RankAttachmentType,
}

// ChannelRankColumns lists the rank columns available for a channel or the server.
var ChannelRankColumns = []Rank{
	RankMessageSender, RankCharacterTyper,
	RankEmojiUsed, RankReaction, RankOverallEmoji,
	RankMentioner, RankMentioned, RankReplier, RankRepliedTo,
	RankLinkSender, RankAttachmentSender, RankAttachmentType,
}

// RankPreset is a named group of rank columns.
type RankPreset struct {
	Name  string
	Ranks []Rank
}

// RankPresets groups channel rank columns the way the report menus do.
var RankPresets = []RankPreset{
	{Name: "messages", Ranks: ChannelRankColumns[:2]},
	{Name: "emoji", Ranks: ChannelRankColumns[2:5]},
	{Name: "replies", Ranks: ChannelRankColumns[5:9]},
	{Name: "links", Ranks: ChannelRankColumns[9:12]},
	{Name: "all", Ranks: ChannelRankColumns},
}

// A dim returns the keys of one dimension sorted by descending count.
type userDim func(u *models.UserStats) []string

type channelDim func(c *models.ChannelStats) []string

var userDims = map[Rank]userDim{
	RankEmojiUsed: func(u *models.UserStats) []string { return u.Emoji.Ranked() },
	RankReaction:  func(u *models.UserStats) []string { return u.Reactions.Ranked() },
	RankOverallEmoji: func(u *models.UserStats) []string {
		overall := models.SumCounters(&u.Emoji, &u.Reactions)
		return overall.Ranked()
	},
	RankReactionsReceived: func(u *models.UserStats) []string { return u.ReactionsReceived.Ranked() },
	RankMentioned:         func(u *models.UserStats) []string { return u.Mentions.Ranked() },
	RankMentionedBy:       func(u *models.UserStats) []string { return u.MentionedBy.Ranked() },
	RankReplied:           func(u *models.UserStats) []string { return u.Replies.Ranked() },
	RankRepliedToBy:       func(u *models.UserStats) []string { return u.RepliedToBy.Ranked() },
	RankAttachmentType:    func(u *models.UserStats) []string { return u.Attachments.Ranked() },
}

var channelDims = map[Rank]channelDim{
	RankMessageSender:  func(c *models.ChannelStats) []string { return c.Messages.Ranked() },
	RankCharacterTyper: func(c *models.ChannelStats) []string { return c.CharsTyped.Ranked() },
	RankEmojiUsed:      func(c *models.ChannelStats) []string { return c.Emoji.Ranked() },
	RankReaction:       func(c *models.ChannelStats) []string { return c.Reactions.Ranked() },
	RankOverallEmoji: func(c *models.ChannelStats) []string {
		overall := models.SumCounters(&c.Emoji, &c.Reactions)
		return overall.Ranked()
	},
	RankMentioner:  func(c *models.ChannelStats) []string { return c.Mentions.Ranked() },
	RankMentioned:  func(c *models.ChannelStats) []string { return c.Mentioned.Ranked() },
	RankReplier:    func(c *models.ChannelStats) []string { return c.Replies.Ranked() },
	RankRepliedTo:  func(c *models.ChannelStats) []string { return c.RepliedTo.Ranked() },
	RankLinkSender: func(c *models.ChannelStats) []string { return c.Links.Ranked() },
	RankAttachmentSender: func(c *models.ChannelStats) []string {
		totals := c.Attachments.OuterTotals()
		return totals.Ranked()
	},
	RankAttachmentType: func(c *models.ChannelStats) []string {
		flat := c.Attachments.Flatten()
		return flat.Ranked()
	},
}

// FindRankPreset returns the rank preset called name.
func FindRankPreset(name string) (RankPreset, bool) {
	for _, p := range RankPresets {
		if p.Name == name {
			return p, true
		}
	}
	return RankPreset{}, false
}

// RankTable has one column per rank and one row per position. Cell [i][j]
// is the key at position i of column j, or NoData past its end.
type RankTable struct {
	Ranks []Rank
	Rows  [][]string
}

// UserRanks ranks the dimensions of user name.
func (e *Engine) UserRanks(name string, ranks []Rank) (*RankTable, error) {
	u, ok := e.a.Users.Get(name)
	if !ok {
		return nil, fmt.Errorf("user ranks: %w: user %q", ErrUnknownSubject, name)
	}
	cols := make([][]string, len(ranks))
	for i, r := range ranks {
		fn, ok := userDims[r]
		if !ok {
			return nil, fmt.Errorf("user ranks: %w: %q", ErrUnknownMetric, r)
		}
		cols[i] = fn(u)
	}
	return buildRankTable(ranks, cols), nil
}

// ChannelRanks ranks the dimensions of channel name.
func (e *Engine) ChannelRanks(name string, ranks []Rank) (*RankTable, error) {
	c, ok := e.a.Channels.Get(name)
	if !ok {
		return nil, fmt.Errorf("channel ranks: %w: channel %q", ErrUnknownSubject, name)
	}
	return channelRankTable(c, ranks)
}

// ServerRanks ranks the dimensions of the whole server.
func (e *Engine) ServerRanks(ranks []Rank) (*RankTable, error) {
	return channelRankTable(&e.a.Server.ChannelStats, ranks)
}

func channelRankTable(c *models.ChannelStats, ranks []Rank) (*RankTable, error) {
	cols := make([][]string, len(ranks))
	for i, r := range ranks {
		fn, ok := channelDims[r]
		if !ok {
			return nil, fmt.Errorf("ranks: %w: %q", ErrUnknownMetric, r)
		}
		cols[i] = fn(c)
	}
	return buildRankTable(ranks, cols), nil
}

// buildRankTable sizes the table by its longest column, capped at
// MaxRankRows.
func buildRankTable(ranks []Rank, cols [][]string) *RankTable {
	rows := 0
	for _, col := range cols {
		rows = max(rows, len(col))
	}
	rows = min(rows, MaxRankRows)

	t := &RankTable{Ranks: ranks, Rows: make([][]string, rows)}
	for i := range t.Rows {
		line := make([]string, len(cols))
		for j, col := range cols {
			if i < len(col) {
				line[j] = col[i]
			} else {
				line[j] = NoData
			}
		}
		t.Rows[i] = line
	}
	return t
}
