package analyzer

import "strings"

// QuoteMarker starts a quoted line.
const QuoteMarker = "> "

// Resolution is the outcome of the legacy reply heuristic for one message.
type Resolution struct {
	// Mentions is the corrected mention set, in the order of the input list.
	Mentions []string
	// ReplyTo is the quoted author, empty when none was found.
	ReplyTo string
}

// ResolveReply applies the "quote a message, then tag its author" convention
// that predates native replies.
//
// Names tagged inside quoted lines are dropped from the mentions. The first
// body line is checked for a leading @name, which becomes the reply target.
// Names tagged again anywhere in the body, other than the target, are added
// back. A tag wrapped in a backtick on either side is a code sample and
// never counts.
func ResolveReply(content string, mentions []string) Resolution {
	lines := strings.Split(content, "\n")
	names := dedupe(mentions)

	active := make(map[string]bool, len(names))
	for _, m := range names {
		active[m] = true
	}

	for _, line := range lines {
		if !isQuoted(line) {
			continue
		}
		for _, m := range names {
			if hasTag(line, m) {
				delete(active, m)
			}
		}
	}

	var replyTo string
	for _, line := range lines {
		if isQuoted(line) {
			continue
		}
		for _, m := range names {
			if m != "" && strings.HasPrefix(line, "@"+m) {
				replyTo = m
				delete(active, m)
				break
			}
		}
		break
	}

	for _, line := range lines {
		if isQuoted(line) {
			continue
		}
		for _, m := range names {
			if m != replyTo && hasTag(line, m) {
				active[m] = true
			}
		}
	}

	out := make([]string, 0, len(active))
	for _, m := range names {
		if active[m] {
			out = append(out, m)
		}
	}
	return Resolution{Mentions: out, ReplyTo: replyTo}
}

func isQuoted(line string) bool {
	return strings.HasPrefix(line, QuoteMarker)
}

// hasTag reports whether line contains @name not touching a backtick.
func hasTag(line, name string) bool {
	if name == "" {
		return false
	}
	tag := "@" + name
	for offset := 0; ; {
		i := strings.Index(line[offset:], tag)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(tag)
		before := start > 0 && line[start-1] == '`'
		after := end < len(line) && line[end] == '`'
		if !before && !after {
			return true
		}
		offset = start + 1
	}
}

// dedupe keeps the first occurrence of every name.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
