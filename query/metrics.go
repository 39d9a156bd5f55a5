package query

import "discord-analyzer/models"

// Metric names one pivot table column.
type Metric string

const (
	Messages             Metric = "Messages"
	TopMessageSender     Metric = "Top message sender"
	CharactersTyped      Metric = "Characters typed"
	TopCharacterTyper    Metric = "Top character typer"
	CharactersPerMessage Metric = "Characters per message"
	EmojiUsed            Metric = "Emoji used"
	TopEmoji             Metric = "Top emoji"
	Reactions            Metric = "Reactions"
	TopReaction          Metric = "Top reaction"
	TopOverallEmoji      Metric = "Top overall emoji"
	ReactionsReceived    Metric = "Reactions received"
	TopReactionReceived  Metric = "Top reaction received"
	Mentions             Metric = "Mentions"
	TimesMentioned       Metric = "Times mentioned"
	TopMentioner         Metric = "Top mentioner"
	TopMentioned         Metric = "Top mentioned"
	Replies              Metric = "Replies"
	TimesRepliedTo       Metric = "Times replied to"
	TopReplier           Metric = "Top replier"
	TopRepliedTo         Metric = "Top replied to"
	Links                Metric = "Links"
	TopLinkSender        Metric = "Top link sender"
	Attachments          Metric = "Attachments"
	TopAttachmentType    Metric = "Top attachment type"
	TopAttachmentSender  Metric = "Top attachment sender"
)

type userMetric func(u *models.UserStats) Value

type channelMetric func(c *models.ChannelStats) Value

// UserMetrics lists the user table columns in display order.
var UserMetrics = []Metric{
	Messages, CharactersTyped, CharactersPerMessage,
	EmojiUsed, TopEmoji, Reactions, TopReaction, TopOverallEmoji, ReactionsReceived, TopReactionReceived,
	Mentions, TimesMentioned, Replies, TimesRepliedTo,
	Links, Attachments, TopAttachmentType,
}

// ChannelMetrics lists the channel table columns in display order.
var ChannelMetrics = []Metric{
	Messages, TopMessageSender, CharactersTyped, TopCharacterTyper, CharactersPerMessage,
	EmojiUsed, TopEmoji, Reactions, TopReaction, TopOverallEmoji,
	Mentions, TopMentioner, TopMentioned, Replies, TopReplier, TopRepliedTo,
	Links, Attachments, TopAttachmentType, TopAttachmentSender, TopLinkSender,
}

// UserChartMetrics and ChannelChartMetrics are the numeric columns that can
// be drawn as a series.
var (
	UserChartMetrics = []Metric{
		Messages, CharactersTyped, CharactersPerMessage, EmojiUsed, Reactions, ReactionsReceived,
		Mentions, TimesMentioned, Replies, TimesRepliedTo, Links, Attachments,
	}
	ChannelChartMetrics = []Metric{
		Messages, CharactersTyped, CharactersPerMessage, EmojiUsed, Reactions,
		Mentions, Replies, Links, Attachments,
	}
)

var userCatalog = map[Metric]userMetric{
	Messages:             func(u *models.UserStats) Value { return Int(u.Messages) },
	CharactersTyped:      func(u *models.UserStats) Value { return Int(u.CharsTyped) },
	CharactersPerMessage: func(u *models.UserStats) Value { return ratio(u.CharsTyped, u.Messages) },
	EmojiUsed:            func(u *models.UserStats) Value { return Int(u.Emoji.Total()) },
	TopEmoji:             func(u *models.UserStats) Value { return textOrNone(u.Emoji.Max()) },
	Reactions:            func(u *models.UserStats) Value { return Int(u.Reactions.Total()) },
	TopReaction:          func(u *models.UserStats) Value { return textOrNone(u.Reactions.Max()) },
	TopOverallEmoji: func(u *models.UserStats) Value {
		overall := models.SumCounters(&u.Emoji, &u.Reactions)
		return textOrNone(overall.Max())
	},
	ReactionsReceived:   func(u *models.UserStats) Value { return Int(u.ReactionsReceived.Total()) },
	TopReactionReceived: func(u *models.UserStats) Value { return textOrNone(u.ReactionsReceived.Max()) },
	Mentions:            func(u *models.UserStats) Value { return Int(u.Mentions.Total()) },
	TimesMentioned:      func(u *models.UserStats) Value { return Int(u.MentionedBy.Total()) },
	Replies:             func(u *models.UserStats) Value { return Int(u.Replies.Total()) },
	TimesRepliedTo:      func(u *models.UserStats) Value { return Int(u.RepliedToBy.Total()) },
	Links:               func(u *models.UserStats) Value { return Int(u.Links) },
	Attachments:         func(u *models.UserStats) Value { return Int(u.Attachments.Total()) },
	TopAttachmentType:   func(u *models.UserStats) Value { return textOrNone(u.Attachments.Max()) },
}

var channelCatalog = map[Metric]channelMetric{
	Messages:          func(c *models.ChannelStats) Value { return Int(c.Messages.Total()) },
	TopMessageSender:  func(c *models.ChannelStats) Value { return textOrNone(c.Messages.Max()) },
	CharactersTyped:   func(c *models.ChannelStats) Value { return Int(c.CharsTyped.Total()) },
	TopCharacterTyper: func(c *models.ChannelStats) Value { return textOrNone(c.CharsTyped.Max()) },
	CharactersPerMessage: func(c *models.ChannelStats) Value {
		return ratio(c.CharsTyped.Total(), c.Messages.Total())
	},
	EmojiUsed:   func(c *models.ChannelStats) Value { return Int(c.Emoji.Total()) },
	TopEmoji:    func(c *models.ChannelStats) Value { return textOrNone(c.Emoji.Max()) },
	Reactions:   func(c *models.ChannelStats) Value { return Int(c.Reactions.Total()) },
	TopReaction: func(c *models.ChannelStats) Value { return textOrNone(c.Reactions.Max()) },
	TopOverallEmoji: func(c *models.ChannelStats) Value {
		overall := models.SumCounters(&c.Emoji, &c.Reactions)
		return textOrNone(overall.Max())
	},
	Mentions:      func(c *models.ChannelStats) Value { return Int(c.Mentions.Total()) },
	TopMentioner:  func(c *models.ChannelStats) Value { return textOrNone(c.Mentions.Max()) },
	TopMentioned:  func(c *models.ChannelStats) Value { return textOrNone(c.Mentioned.Max()) },
	Replies:       func(c *models.ChannelStats) Value { return Int(c.Replies.Total()) },
	TopReplier:    func(c *models.ChannelStats) Value { return textOrNone(c.Replies.Max()) },
	TopRepliedTo:  func(c *models.ChannelStats) Value { return textOrNone(c.RepliedTo.Max()) },
	Links:         func(c *models.ChannelStats) Value { return Int(c.Links.Total()) },
	TopLinkSender: func(c *models.ChannelStats) Value { return textOrNone(c.Links.Max()) },
	Attachments:   func(c *models.ChannelStats) Value { return Int(c.Attachments.Total()) },
	TopAttachmentType: func(c *models.ChannelStats) Value {
		// Summed over every author first, so the winner is the type with
		// the most attachments overall.
		flat := c.Attachments.Flatten()
		return textOrNone(flat.Max())
	},
	TopAttachmentSender: func(c *models.ChannelStats) Value {
		totals := c.Attachments.OuterTotals()
		return textOrNone(totals.Max())
	},
}

// Preset is a named group of columns, mirroring the report menus.
type Preset struct {
	Name    string
	Metrics []Metric
}

var UserPresets = []Preset{
	{Name: "messages", Metrics: UserMetrics[:3]},
	{Name: "emoji", Metrics: UserMetrics[3:10]},
	{Name: "replies", Metrics: UserMetrics[10:14]},
	{Name: "links", Metrics: UserMetrics[14:17]},
	{Name: "overview", Metrics: []Metric{
		Messages, CharactersPerMessage, TopOverallEmoji, TopReactionReceived,
		Mentions, TimesMentioned, Replies, TimesRepliedTo, Links, Attachments,
	}},
}

var ChannelPresets = []Preset{
	{Name: "messages", Metrics: ChannelMetrics[:5]},
	{Name: "emoji", Metrics: ChannelMetrics[5:10]},
	{Name: "replies", Metrics: ChannelMetrics[10:16]},
	{Name: "links", Metrics: ChannelMetrics[16:21]},
	{Name: "overview", Metrics: []Metric{
		Messages, CharactersTyped, CharactersPerMessage, TopOverallEmoji,
		Mentions, Replies, Links, Attachments,
	}},
}

// FindPreset returns the preset called name.
func FindPreset(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
