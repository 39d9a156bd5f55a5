// Package analyzer turns a scan into the nested counters of an Analysis.
package analyzer

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"discord-analyzer/models"
)

// Options are the aggregation toggles. They are baked into the counters, so
// changing any of them means analyzing the scan again.
type Options struct {
	// RepeatEmoji counts every occurrence of an emoji in a message instead
	// of once per message.
	RepeatEmoji bool
	// LegacyReplies enables the quote-then-tag reply heuristic.
	LegacyReplies bool
	// Location is the zone used for hour/day buckets. nil means UTC.
	Location *time.Location
}

// DefaultOptions matches the defaults of a fresh config.
func DefaultOptions() Options {
	return Options{RepeatEmoji: true, LegacyReplies: true, Location: time.UTC}
}

// Analyze aggregates scan into a new Analysis. Channels are walked in scan
// order and messages in log order; counter key order follows that walk.
// The result shares no memory with scan.
func Analyze(scan *models.Scan, opts Options) (*models.Analysis, error) {
	if scan == nil {
		return nil, fmt.Errorf("analyze: nil scan")
	}
	if err := scan.CheckVersion(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	a := &aggregation{
		opts: opts,
		out: &models.Analysis{
			Version:  models.AnalysisVersion,
			Timezone: opts.Location.String(),
			Server:   models.NewServerStats(scan.Server.Name),
			Roles:    copyRoles(scan.Roles),
		},
	}
	for _, cl := range scan.Channels {
		channel := a.channel(cl.Name)
		for i := range cl.Messages {
			a.message(channel, &cl.Messages[i])
		}
	}
	return a.out, nil
}

type aggregation struct {
	opts Options
	out  *models.Analysis
}

func (a *aggregation) user(name string) *models.UserStats {
	if u, ok := a.out.Users.Get(name); ok {
		return u
	}
	u := models.NewUserStats()
	a.out.Users.Set(name, u)
	return u
}

func (a *aggregation) channel(name string) *models.ChannelStats {
	if c, ok := a.out.Channels.Get(name); ok {
		return c
	}
	c := models.NewChannelStats()
	a.out.Channels.Set(name, c)
	return c
}

func (a *aggregation) emoji(token string) *models.EmojiStats {
	if e, ok := a.out.Emoji.Get(token); ok {
		return e
	}
	e := &models.EmojiStats{}
	a.out.Emoji.Set(token, e)
	return e
}

func (a *aggregation) message(channel *models.ChannelStats, msg *models.RawMessage) {
	server := &a.out.Server.ChannelStats
	author := msg.Author
	user := a.user(author)

	// Messages, characters and links
	chars := utf8.RuneCountInString(msg.Content)
	channel.Messages.Inc(author)
	server.Messages.Inc(author)
	channel.CharsTyped.Add(author, chars)
	server.CharsTyped.Add(author, chars)
	if len(msg.Links) > 0 {
		channel.Links.Add(author, len(msg.Links))
		server.Links.Add(author, len(msg.Links))
	}
	user.Messages++
	user.CharsTyped += chars
	user.Links += len(msg.Links)

	// Emoji
	tokens := msg.Emoji
	if !a.opts.RepeatEmoji {
		tokens = dedupe(tokens)
	}
	for _, e := range tokens {
		user.Emoji.Inc(e)
		channel.Emoji.Inc(e)
		server.Emoji.Inc(e)
		a.emoji(e).InMessage.Inc(author)
	}

	// Reactions
	for _, r := range msg.Reactions {
		stats := a.emoji(r.Emoji)
		for _, name := range r.Users {
			a.user(name).Reactions.Inc(r.Emoji)
			channel.Reactions.Inc(r.Emoji)
			server.Reactions.Inc(r.Emoji)
			stats.ReactionsGiven.Inc(name)
			stats.ReactionsReceived.Inc(author)
			user.ReactionsReceived.Inc(r.Emoji)
		}
	}

	mentions := dedupe(msg.Mentions)
	var legacyTarget string
	if a.opts.LegacyReplies && msg.ReplyingTo == "" && len(mentions) > 0 && strings.HasPrefix(msg.Content, QuoteMarker) {
		res := ResolveReply(msg.Content, mentions)
		mentions, legacyTarget = res.Mentions, res.ReplyTo
	}

	// Mentions
	for _, name := range mentions {
		a.user(name).MentionedBy.Inc(author)
		channel.Mentioned.Inc(name)
		server.Mentioned.Inc(name)
		channel.Mentions.Inc(author)
		server.Mentions.Inc(author)
		user.Mentions.Inc(name)
	}

	// Replies
	target := msg.ReplyingTo
	if target == "" {
		target = legacyTarget
	}
	if target != "" {
		a.user(target).RepliedToBy.Inc(author)
		channel.RepliedTo.Inc(target)
		server.RepliedTo.Inc(target)
		channel.Replies.Inc(author)
		server.Replies.Inc(author)
		user.Replies.Inc(target)
	}

	// Attachments
	for _, kind := range msg.Attachments {
		channel.Attachments.Add(author, kind, 1)
		server.Attachments.Add(author, kind, 1)
		user.Attachments.Inc(kind)
	}

	// Time
	b := BucketOf(msg.Timestamp, a.opts.Location)
	channel.ActiveHours.Inc(b.Hour)
	server.ActiveHours.Inc(b.Hour)
	user.ActiveHours.Inc(b.Hour)
	channel.ActiveDays.Inc(b.Weekday)
	server.ActiveDays.Inc(b.Weekday)
	user.ActiveDays.Inc(b.Weekday)
}

func copyRoles(roles []models.Role) []models.Role {
	if roles == nil {
		return nil
	}
	out := make([]models.Role, len(roles))
	for i, r := range roles {
		out[i] = models.Role{Name: r.Name, Members: append([]string(nil), r.Members...)}
	}
	return out
}
