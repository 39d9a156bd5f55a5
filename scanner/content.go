package scanner

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/rivo/uniseg"

	"discord-analyzer/models"
)

var (
	linkPattern        = regexp.MustCompile(`https?://[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b[-a-zA-Z0-9()@:%_+.~#?&/=]*`)
	customEmojiPattern = regexp.MustCompile(`<a?:([^:\s]+):\d+>`)
)

// pictographic covers the blocks emoji are drawn from. Text symbols such as
// © only count when followed by the emoji presentation selector.
var pictographic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x231a, Hi: 0x23ff, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25aa, Hi: 0x25fe, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3299, Stride: 2},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
	},
}

const (
	variationSelector16 = '\ufe0f'
	keycap              = '\u20e3'
)

// normalized is the text part of a message after cleanup.
type normalized struct {
	Content string
	Emoji   []string
	Links   []string
}

// normalize pulls links out of content, collects emoji tokens in order of
// appearance and rewrites custom emoji to their :name: form.
func normalize(content string) normalized {
	var n normalized
	n.Links = linkPattern.FindAllString(content, -1)
	for _, l := range n.Links {
		content = strings.Replace(content, l, "", 1)
	}

	rest := content
	for rest != "" {
		loc := customEmojiPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			n.Emoji = append(n.Emoji, unicodeEmoji(rest)...)
			break
		}
		n.Emoji = append(n.Emoji, unicodeEmoji(rest[:loc[0]])...)
		n.Emoji = append(n.Emoji, rest[loc[2]:loc[3]])
		rest = rest[loc[1]:]
	}

	n.Content = customEmojiPattern.ReplaceAllString(content, ":$1:")
	return n
}

// unicodeEmoji returns the emoji grapheme clusters of s. A cluster keeps
// skin tones, flags and ZWJ sequences together as one token.
func unicodeEmoji(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if cluster := g.Str(); isEmoji(g.Runes()) {
			out = append(out, cluster)
		}
	}
	return out
}

func isEmoji(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	first := runes[0]
	if first >= 0x1f1e6 && first <= 0x1f1ff {
		return true // regional indicator (flag)
	}
	for _, r := range runes[1:] {
		if r == variationSelector16 || r == keycap {
			return true
		}
	}
	return unicode.Is(pictographic, first)
}

// attachmentKinds returns the media type prefix of every attachment that
// carries a content type.
func attachmentKinds(atts []*discordgo.MessageAttachment) []string {
	var out []string
	for _, a := range atts {
		if a == nil || a.ContentType == "" {
			continue
		}
		kind, _, _ := strings.Cut(a.ContentType, "/")
		out = append(out, kind)
	}
	return out
}

// rawMessage converts m without its reactions, which need extra requests.
func rawMessage(m *discordgo.Message) models.RawMessage {
	var replyingTo string
	if ref := m.ReferencedMessage; ref != nil && ref.Author != nil {
		replyingTo = ref.Author.Username
	}

	var mentions []string
	removed := false
	for _, u := range m.Mentions {
		if u == nil {
			continue
		}
		if !removed && replyingTo != "" && u.Username == replyingTo {
			removed = true
			continue
		}
		mentions = append(mentions, u.Username)
	}

	text := normalize(m.ContentWithMentionsReplaced())
	var author string
	if m.Author != nil {
		author = m.Author.Username
	}
	return models.RawMessage{
		Timestamp:   m.Timestamp.UTC(),
		Author:      author,
		Content:     text.Content,
		Emoji:       text.Emoji,
		Mentions:    mentions,
		ReplyingTo:  replyingTo,
		Attachments: attachmentKinds(m.Attachments),
		Links:       text.Links,
	}
}
