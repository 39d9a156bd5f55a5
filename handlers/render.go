package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"discord-analyzer/query"
)

const (
	messageLimit = 2000
	barWidth     = 20
	fence        = "```"
	cutMarker    = "..."
)

// codeBlock wraps body in a monospace block that fits in one message. Lines
// past the limit are dropped and replaced by a marker.
func codeBlock(title, body string) string {
	head := ""
	if title != "" {
		head = "**" + title + "**\n"
	}
	wrap := func(b string) string { return head + fence + "\n" + b + fence }
	out := wrap(body)
	if utf8.RuneCountInString(out) <= messageLimit {
		return out
	}

	budget := messageLimit - utf8.RuneCountInString(wrap(cutMarker+"\n"))
	var kept strings.Builder
	used := 0
	for _, line := range strings.SplitAfter(body, "\n") {
		n := utf8.RuneCountInString(line)
		if used+n > budget {
			break
		}
		kept.WriteString(line)
		used += n
	}
	return wrap(kept.String() + cutMarker + "\n")
}

// truncate cuts plain text to one message.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= messageLimit {
		return s
	}
	r := []rune(s)
	return string(r[:messageLimit-len(cutMarker)]) + cutMarker
}

func newTabWriter(sb *strings.Builder) *tabwriter.Writer {
	return tabwriter.NewWriter(sb, 0, 0, 2, ' ', 0)
}

// RenderTable draws a pivot table, one row per subject.
func RenderTable(t *query.Table) string {
	var sb strings.Builder
	w := newTabWriter(&sb)
	header := []string{t.Subject}
	for _, m := range t.Metrics {
		header = append(header, string(m))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range t.Rows {
		cells := []string{r.Subject}
		for _, c := range r.Cells {
			cells = append(cells, c.String())
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	return codeBlock("", sb.String())
}

// RenderRanks draws a rank table with a position column.
func RenderRanks(title string, rt *query.RankTable) string {
	var sb strings.Builder
	w := newTabWriter(&sb)
	header := []string{"#"}
	for _, r := range rt.Ranks {
		header = append(header, string(r))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i, row := range rt.Rows {
		fmt.Fprintln(w, strconv.Itoa(i+1)+"\t"+strings.Join(row, "\t"))
	}
	w.Flush()
	return codeBlock(title, sb.String())
}

// RenderChart draws points as horizontal bars scaled to the largest value.
func RenderChart(title string, points []query.Point) string {
	if len(points) == 0 {
		return codeBlock(title, "no data\n")
	}
	peak := 0.0
	for _, p := range points {
		peak = math.Max(peak, p.Value)
	}
	var sb strings.Builder
	w := newTabWriter(&sb)
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = int(math.Round(p.Value / peak * barWidth))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Label, strings.Repeat("█", n), formatNumber(p.Value))
	}
	w.Flush()
	return codeBlock(title, sb.String())
}

// RenderEmoji draws the emoji ranking.
func RenderEmoji(rows []query.EmojiRow) string {
	if len(rows) == 0 {
		return codeBlock("Emoji", "no emoji used yet\n")
	}
	var sb strings.Builder
	w := newTabWriter(&sb)
	fmt.Fprintln(w, "#\tEmoji\tIn messages\tTop user\tAs reaction\tTop reactor\tTop receiver\tOverall\tTop overall")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%s\t%s\t%d\t%s\n",
			r.Rank, r.Emoji, r.InMessages, r.TopInMessages, r.AsReaction, r.TopAsReaction, r.TopReceiver, r.Overall, r.TopOverall)
	}
	w.Flush()
	return codeBlock("Emoji", sb.String())
}

// RenderFields draws a two column label/value list.
func RenderFields(title string, fields []query.Field) string {
	var sb strings.Builder
	w := newTabWriter(&sb)
	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%s\n", f.Label, f.Value)
	}
	w.Flush()
	return codeBlock(title, sb.String())
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
