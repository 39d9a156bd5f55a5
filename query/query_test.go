package query

import (
	"errors"
	"slices"
	"testing"
	"time"

	"discord-analyzer/analyzer"
	"discord-analyzer/models"
)

func msg(author string, hour int) models.RawMessage {
	return models.RawMessage{Author: author, Timestamp: time.Date(2023, 6, 15, hour, 0, 0, 0, time.UTC)}
}

func fixture(t *testing.T) *Engine {
	t.Helper()
	scan := models.NewScan(models.Server{ID: "1", Name: "guild"})

	m1 := msg("alice", 9)
	m1.Content = "hello world"
	m1.Emoji = []string{"wave", "smile"}
	m1.Reactions = []models.Reaction{{Emoji: "heart", Users: []string{"bob"}}}
	m1.Links = []string{"https://a.example", "https://b.example"}

	m2 := msg("bob", 10)
	m2.Content = "hey"
	m2.Emoji = []string{"smile"}
	m2.Mentions = []string{"alice"}

	m3 := msg("alice", 11)
	m3.Content = "ok"
	m3.ReplyingTo = "bob"
	m3.Attachments = []string{"video", "image", "image", "image"}

	m4 := msg("bob", 12)
	m4.Content = ""
	m4.Attachments = []string{"video", "video"}

	scan.EnsureChannel("10", "general").Messages = []models.RawMessage{m1, m2, m3, m4}
	scan.EnsureChannel("20", "quiet")
	scan.Roles = []models.Role{
		{Name: "@everyone", Members: []string{"alice", "bob", "ghost"}},
		{Name: "mods", Members: []string{"bob"}},
	}

	a, err := analyzer.Analyze(scan, analyzer.DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return New(a)
}

func cells(row Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.String()
	}
	return out
}

func TestUserTable(t *testing.T) {
	e := fixture(t)

	table, err := e.UserTable(DefaultRoleFilter, []Metric{Messages, CharactersPerMessage, TopEmoji, TopOverallEmoji, Links, Attachments, TopAttachmentType})
	if err != nil {
		t.Fatalf("UserTable() error = %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}

	tests := []struct {
		subject string
		want    []string
	}{
		// alice: top emoji tie wave/smile -> wave (first seen)
		{"alice", []string{"2", "6.5", "wave", "wave", "2", "4", "image"}},
		// bob: emoji smile, reaction heart; overall tie -> smile (emoji keys first)
		{"bob", []string{"2", "1.5", "smile", "smile", "0", "2", "video"}},
		// ghost never posted
		{"ghost", []string{"0", NoData, NoData, NoData, "0", "0", NoData}},
	}
	for i, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			row := table.Rows[i]
			if row.Subject != tt.subject {
				t.Fatalf("subject = %q, want %q", row.Subject, tt.subject)
			}
			if got := cells(row); !slices.Equal(got, tt.want) {
				t.Errorf("cells = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserTable_RoleFilter(t *testing.T) {
	e := fixture(t)

	table, err := e.UserTable([]string{"mods", "@everyone", "missing"}, []Metric{Messages})
	if err != nil {
		t.Fatal(err)
	}
	var subjects []string
	for _, r := range table.Rows {
		subjects = append(subjects, r.Subject)
	}
	if !slices.Equal(subjects, []string{"bob", "alice", "ghost"}) {
		t.Errorf("subjects = %v", subjects)
	}
}

func TestUserTable_UnknownMetric(t *testing.T) {
	e := fixture(t)
	if _, err := e.UserTable(DefaultRoleFilter, []Metric{TopMessageSender}); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("err = %v, want ErrUnknownMetric", err)
	}
}

func TestChannelTable(t *testing.T) {
	e := fixture(t)

	table, err := e.ChannelTable([]Metric{Messages, TopMessageSender, CharactersPerMessage, TopAttachmentType, TopAttachmentSender, TopLinkSender, TopRepliedTo})
	if err != nil {
		t.Fatal(err)
	}
	if got := cells(table.Rows[0]); !slices.Equal(got, []string{"4", "alice", "4.0", "video", "alice", "alice", "bob"}) {
		t.Errorf("general = %v", got)
	}
	if got := cells(table.Rows[1]); !slices.Equal(got, []string{"0", NoData, NoData, NoData, NoData, NoData, NoData}) {
		t.Errorf("quiet = %v", got)
	}
}

func TestTopAttachmentType_SumsAcrossAuthors(t *testing.T) {
	e := fixture(t)

	// alice sent video x1 and image x3, bob sent video x2. Per author alice's
	// favourite is image, but summed video and image both reach 3 and video
	// was seen first.
	general, _ := e.Analysis().Channels.Get("general")
	if top, _ := general.Attachments.Get("alice").Max(); top != "image" {
		t.Fatalf("alice top = %q", top)
	}
	table, _ := e.ChannelTable([]Metric{TopAttachmentType, Attachments})
	if got := cells(table.Rows[0]); !slices.Equal(got, []string{"video", "6"}) {
		t.Errorf("cells = %v", got)
	}
}

func TestRanks_SizeLaw(t *testing.T) {
	e := fixture(t)

	table, err := e.ServerRanks([]Rank{RankMessageSender, RankAttachmentType, RankReplier})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	want := [][]string{
		{"alice", "video", "alice"},
		{"bob", "image", NoData},
	}
	for i := range want {
		if !slices.Equal(table.Rows[i], want[i]) {
			t.Errorf("row %d = %v, want %v", i, table.Rows[i], want[i])
		}
	}
}

func TestRanks_Capped(t *testing.T) {
	scan := models.NewScan(models.Server{Name: "big"})
	cl := scan.EnsureChannel("1", "general")
	for i := 0; i < 15; i++ {
		m := msg(string(rune('a'+i)), 1)
		cl.Messages = append(cl.Messages, m)
	}
	a, err := analyzer.Analyze(scan, analyzer.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	table, err := New(a).ChannelRanks("general", []Rank{RankMessageSender, RankEmojiUsed})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != MaxRankRows {
		t.Fatalf("rows = %d, want %d", len(table.Rows), MaxRankRows)
	}
	// Equal counts keep discovery order.
	if table.Rows[0][0] != "a" || table.Rows[9][0] != "j" || table.Rows[0][1] != NoData {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestRanks_Empty(t *testing.T) {
	e := fixture(t)
	table, err := e.ChannelRanks("quiet", ChannelRankColumns)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(table.Rows))
	}
}

func TestUserRanks(t *testing.T) {
	e := fixture(t)

	table, err := e.UserRanks("alice", []Rank{RankOverallEmoji, RankReactionsReceived, RankAttachmentType})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"wave", "heart", "image"},
		{"smile", NoData, "video"},
	}
	if len(table.Rows) != len(want) {
		t.Fatalf("rows = %v", table.Rows)
	}
	for i := range want {
		if !slices.Equal(table.Rows[i], want[i]) {
			t.Errorf("row %d = %v, want %v", i, table.Rows[i], want[i])
		}
	}

	if _, err := e.UserRanks("nobody", UserRankColumns); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("err = %v, want ErrUnknownSubject", err)
	}
	if _, err := e.UserRanks("alice", []Rank{RankLinkSender}); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("err = %v, want ErrUnknownMetric", err)
	}
}

func TestSeries(t *testing.T) {
	e := fixture(t)

	points, err := e.UserSeries(DefaultRoleFilter, CharactersPerMessage)
	if err != nil {
		t.Fatal(err)
	}
	// ghost has no messages and is left out.
	if len(points) != 2 || points[0] != (Point{"alice", 6.5}) || points[1] != (Point{"bob", 1.5}) {
		t.Errorf("points = %v", points)
	}

	points, err = e.ChannelSeries(Messages)
	if err != nil {
		t.Fatal(err)
	}
	sorted := SortDescending(append(points, Point{"extra", 4}))
	if sorted[0].Label != "general" || sorted[1].Label != "extra" || sorted[2].Label != "quiet" {
		t.Errorf("sorted = %v", sorted)
	}

	if _, err := e.UserSeries(DefaultRoleFilter, TopEmoji); !errors.Is(err, ErrNotChartable) {
		t.Errorf("err = %v, want ErrNotChartable", err)
	}
}

func TestEmojiTable(t *testing.T) {
	e := fixture(t)

	rows := e.EmojiTable(DefaultEmojiRows)
	var order []string
	for _, r := range rows {
		order = append(order, r.Emoji)
	}
	if !slices.Equal(order, []string{"smile", "wave", "heart"}) {
		t.Errorf("order = %v", order)
	}
	heart := rows[2]
	if heart.Rank != 3 || heart.AsReaction != 1 || heart.TopAsReaction.String() != "bob" || heart.TopReceiver.String() != "alice" || !heart.TopInMessages.IsNone() {
		t.Errorf("heart = %+v", heart)
	}
	if got := e.EmojiTable(1); len(got) != 1 {
		t.Errorf("EmojiTable(1) = %d rows", len(got))
	}

	if _, err := e.EmojiSummary("nope"); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("err = %v", err)
	}
}

func TestSummaries(t *testing.T) {
	e := fixture(t)

	fields := e.ServerSummary()
	if fields[0].Value.Int != 4 || fields[2].Value.String() != "4.0" {
		t.Errorf("server summary = %+v", fields)
	}
	quiet, err := e.ChannelSummary("quiet")
	if err != nil {
		t.Fatal(err)
	}
	if !quiet[2].Value.IsNone() {
		t.Errorf("quiet chars per message = %v, want no data", quiet[2].Value)
	}
	if _, err := e.UserSummary("ghost"); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("err = %v", err)
	}
}

func TestActivity(t *testing.T) {
	e := fixture(t)

	hours, days, err := e.Activity(ScopeUser, "alice")
	if err != nil {
		t.Fatal(err)
	}
	points := HourSeries(hours, true)
	if len(points) != 24 || points[0].Label != "12 AM" || points[9] != (Point{"9 AM", 1}) || points[13].Label != "1 PM" {
		t.Errorf("hours = %v", points)
	}
	daily := DaySeries(days)
	if daily[3] != (Point{"Thu", 2}) {
		t.Errorf("days = %v", daily)
	}

	if _, _, err := e.Activity(ScopeChannel, "missing"); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("err = %v", err)
	}
}
