package handlers

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"discord-analyzer/query"
)

func TestRenderTable(t *testing.T) {
	table := &query.Table{
		Subject: "User",
		Metrics: []query.Metric{query.Messages},
		Rows: []query.Row{
			{Subject: "alice", Cells: []query.Value{query.Int(2)}},
			{Subject: "bob", Cells: []query.Value{query.None()}},
		},
	}
	want := "```\nUser   Messages\nalice  2\nbob    -\n```"
	if got := RenderTable(table); got != want {
		t.Errorf("RenderTable() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderRanks(t *testing.T) {
	rt := &query.RankTable{
		Ranks: []query.Rank{query.RankMessageSender},
		Rows:  [][]string{{"alice"}, {"bob"}},
	}
	want := "**Server**\n```\n#  Message sender\n1  alice\n2  bob\n```"
	if got := RenderRanks("Server", rt); got != want {
		t.Errorf("RenderRanks() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderChart(t *testing.T) {
	out := RenderChart("Messages", []query.Point{{Label: "a", Value: 10}, {Label: "b", Value: 5}, {Label: "c", Value: 0}})
	lines := strings.Split(out, "\n")
	// title, fence, three bars, fence
	if len(lines) != 6 {
		t.Fatalf("lines = %q", lines)
	}
	for i, want := range []int{20, 10, 0} {
		if got := strings.Count(lines[i+2], "█"); got != want {
			t.Errorf("bar %d = %d blocks, want %d", i, got, want)
		}
	}
	if !strings.HasSuffix(lines[2], "10") || !strings.HasSuffix(lines[4], "0") {
		t.Errorf("values missing: %q", lines)
	}

	if got := RenderChart("Empty", nil); !strings.Contains(got, "no data") {
		t.Errorf("empty chart = %q", got)
	}
}

func TestCodeBlockTruncates(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&sb, "line %04d\n", i)
	}
	out := codeBlock("Long", sb.String())
	if n := utf8.RuneCountInString(out); n > messageLimit {
		t.Fatalf("length = %d, want <= %d", n, messageLimit)
	}
	if !strings.HasPrefix(out, "**Long**\n```\nline 0000\n") {
		t.Errorf("prefix = %q", out[:30])
	}
	if !strings.HasSuffix(out, "\n"+cutMarker+"\n```") {
		t.Errorf("suffix = %q", out[len(out)-20:])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short"); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	long := strings.Repeat("é", messageLimit+10)
	got := truncate(long)
	if utf8.RuneCountInString(got) != messageLimit || !strings.HasSuffix(got, cutMarker) {
		t.Errorf("truncate(long) has %d runes", utf8.RuneCountInString(got))
	}
}
