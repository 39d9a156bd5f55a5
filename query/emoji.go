package query

import (
	"fmt"
	"sort"

	"discord-analyzer/models"
)

// DefaultEmojiRows is the default length of the emoji ranking.
const DefaultEmojiRows = 20

// EmojiRow is one line of the emoji ranking.
type EmojiRow struct {
	Rank          int
	Emoji         string
	InMessages    int
	TopInMessages Value
	AsReaction    int
	TopAsReaction Value
	TopReceiver   Value
	Overall       int
	TopOverall    Value
}

// EmojiTable ranks emoji by uses in messages plus uses as reaction and
// returns the first rows of them. Ties keep discovery order.
func (e *Engine) EmojiTable(rows int) []EmojiRow {
	tokens := e.a.Emoji.Keys()
	overall := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		s, _ := e.a.Emoji.Get(tok)
		overall[tok] = s.InMessage.Total() + s.ReactionsGiven.Total()
	}
	sort.SliceStable(tokens, func(i, j int) bool { return overall[tokens[i]] > overall[tokens[j]] })
	if rows >= 0 && rows < len(tokens) {
		tokens = tokens[:rows]
	}

	out := make([]EmojiRow, 0, len(tokens))
	for i, tok := range tokens {
		s, _ := e.a.Emoji.Get(tok)
		out = append(out, emojiRow(i+1, tok, s))
	}
	return out
}

// EmojiSummary describes a single emoji token.
func (e *Engine) EmojiSummary(token string) (EmojiRow, error) {
	s, ok := e.a.Emoji.Get(token)
	if !ok {
		return EmojiRow{}, fmt.Errorf("emoji summary: %w: emoji %q", ErrUnknownSubject, token)
	}
	return emojiRow(0, token, s), nil
}

func emojiRow(rank int, token string, s *models.EmojiStats) EmojiRow {
	combined := models.SumCounters(&s.InMessage, &s.ReactionsGiven)
	return EmojiRow{
		Rank:          rank,
		Emoji:         token,
		InMessages:    s.InMessage.Total(),
		TopInMessages: textOrNone(s.InMessage.Max()),
		AsReaction:    s.ReactionsGiven.Total(),
		TopAsReaction: textOrNone(s.ReactionsGiven.Max()),
		TopReceiver:   textOrNone(s.ReactionsReceived.Max()),
		Overall:       s.InMessage.Total() + s.ReactionsGiven.Total(),
		TopOverall:    textOrNone(combined.Max()),
	}
}
