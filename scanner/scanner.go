// Package scanner reads the message history of a guild through the Discord
// REST API and turns it into a models.Scan.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"discord-analyzer/models"
)

// Source is the subset of the Discord REST API the scanner needs.
// *discordgo.Session satisfies it.
type Source interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
}

var _ Source = (*discordgo.Session)(nil)

const (
	maxPageSize   = 100
	memberPage    = 1000
	defaultRPS    = 5
	everyoneRole  = "@everyone"
	progressEvery = 1000
)

// Options control which channels are read and how fast.
type Options struct {
	// Channels restricts the scan to these channel ids. Empty means every
	// text channel of the guild.
	Channels          []string
	PageSize          int
	RequestsPerSecond float64
}

// Scanner walks guild history through a Source.
type Scanner struct {
	src     Source
	opts    Options
	limiter *rate.Limiter
}

// New returns a scanner reading from src.
func New(src Source, opts Options) *Scanner {
	if opts.PageSize <= 0 || opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	burst := max(1, int(opts.RequestsPerSecond))
	return &Scanner{
		src:     src,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
	}
}

// wait blocks until the limiter allows one more request.
func (s *Scanner) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// Scan reads guildID. With prev == nil it is a full scan; otherwise prev is
// updated in place with the messages newer than each channel's high-water
// mark and returned.
//
// Failures on single channels or reactions are logged and collected; the
// partial scan is returned together with the joined error. Only guild
// lookup and context cancellation abort the scan.
func (s *Scanner) Scan(ctx context.Context, guildID string, prev *models.Scan) (*models.Scan, error) {
	if prev != nil {
		if err := prev.CheckVersion(); err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	guild, err := s.src.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}

	scan := prev
	if scan == nil {
		scan = models.NewScan(models.Server{ID: guild.ID, Name: guild.Name})
	}
	scan.Server.Name = guild.Name

	channels, err := s.channels(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var errs []error
	for i, ch := range channels {
		log.Printf("Scanning channel #%s [%d/%d]", ch.Name, i+1, len(channels))
		cl := scan.EnsureChannel(ch.ID, ch.Name)
		n, err := s.scanChannel(ctx, cl)
		if err != nil {
			if ctx.Err() != nil {
				return scan, errors.Join(append(errs, err)...)
			}
			log.Printf("Scan of channel #%s stopped: %v", ch.Name, err)
			errs = append(errs, fmt.Errorf("channel %s: %w", ch.Name, err))
		}
		log.Printf("Channel #%s: %d new messages", ch.Name, n)
	}

	roles, err := s.roles(ctx, guildID)
	if err != nil {
		log.Printf("Failed to read roles of guild %s: %v", guildID, err)
		errs = append(errs, err)
	} else {
		scan.Roles = roles
	}
	return scan, errors.Join(errs...)
}

// channels returns the text channels to scan, in guild order.
func (s *Scanner) channels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	all, err := s.src.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channels of %s: %w", guildID, err)
	}
	var out []*discordgo.Channel
	for _, ch := range all {
		if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews {
			continue
		}
		if len(s.opts.Channels) > 0 && !slices.Contains(s.opts.Channels, ch.ID) {
			continue
		}
		out = append(out, ch)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// scanChannel walks history newest first until it reaches the high-water
// mark, then appends the new messages in chronological order. A walk that
// fails partway leaves cl untouched so the next update reads the same range
// again; moving the mark past pages never read would skip them for good.
func (s *Scanner) scanChannel(ctx context.Context, cl *models.ChannelLog) (int, error) {
	last := cl.LastScannedMessage
	var fresh []models.RawMessage
	var walkErr error

	before := ""
walk:
	for {
		if err := s.wait(ctx); err != nil {
			walkErr = err
			break
		}
		page, err := s.src.ChannelMessages(cl.ID, s.opts.PageSize, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			walkErr = fmt.Errorf("fetch messages: %w", err)
			break
		}
		for _, m := range page {
			if !last.IsZero() && !m.Timestamp.After(last) {
				break walk
			}
			raw := rawMessage(m)
			raw.Reactions, err = s.reactions(ctx, m)
			if err != nil {
				log.Printf("Reactions of message %s in #%s incomplete: %v", m.ID, cl.Name, err)
				if ctx.Err() != nil {
					walkErr = err
					break walk
				}
			}
			fresh = append(fresh, raw)
			if len(fresh)%progressEvery == 0 {
				log.Printf("#%s: %d messages, at %s", cl.Name, len(fresh), m.Timestamp.Format(time.DateTime))
			}
		}
		if len(page) < s.opts.PageSize {
			break
		}
		before = page[len(page)-1].ID
	}
	if walkErr != nil {
		if len(fresh) > 0 {
			log.Printf("#%s: dropped %d messages of an incomplete walk", cl.Name, len(fresh))
		}
		return 0, walkErr
	}

	slices.Reverse(fresh)
	cl.Messages = append(cl.Messages, fresh...)
	for _, m := range fresh {
		if m.Timestamp.After(cl.LastScannedMessage) {
			cl.LastScannedMessage = m.Timestamp
		}
	}
	return len(fresh), nil
}

// reactions lists the reactors of every reaction on m. The users of one
// emoji are paged until a short page comes back.
func (s *Scanner) reactions(ctx context.Context, m *discordgo.Message) ([]models.Reaction, error) {
	var out []models.Reaction
	for _, r := range m.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		reaction := models.Reaction{Emoji: r.Emoji.Name}
		after := ""
		for {
			if err := s.wait(ctx); err != nil {
				return out, err
			}
			users, err := s.src.MessageReactions(m.ChannelID, m.ID, r.Emoji.APIName(), maxPageSize, "", after, discordgo.WithContext(ctx))
			if err != nil {
				return out, fmt.Errorf("fetch reactors of %s: %w", r.Emoji.Name, err)
			}
			for _, u := range users {
				reaction.Users = append(reaction.Users, u.Username)
			}
			if len(users) < maxPageSize {
				break
			}
			after = users[len(users)-1].ID
		}
		out = append(out, reaction)
	}
	return out, nil
}

// roles maps every role to the names of its members. @everyone holds all
// members.
func (s *Scanner) roles(ctx context.Context, guildID string) ([]models.Role, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	roles, err := s.src.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch roles of %s: %w", guildID, err)
	}

	var members []*discordgo.Member
	after := ""
	for {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		page, err := s.src.GuildMembers(guildID, after, memberPage, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetch members of %s: %w", guildID, err)
		}
		members = append(members, page...)
		if len(page) < memberPage {
			break
		}
		after = page[len(page)-1].User.ID
	}

	out := make([]models.Role, 0, len(roles))
	for _, r := range roles {
		role := models.Role{Name: r.Name, Members: []string{}}
		for _, m := range members {
			if m.User == nil {
				continue
			}
			if r.ID == guildID || r.Name == everyoneRole || slices.Contains(m.Roles, r.ID) {
				role.Members = append(role.Members, m.User.Username)
			}
		}
		out = append(out, role)
	}
	return out, nil
}
