package query

import (
	"errors"
	"slices"
	"testing"
)

func TestResolveMetrics(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		names   []string
		preset  string
		want    []Metric
		wantErr error
	}{
		{"all users", SubjectUser, nil, "", UserMetrics, nil},
		{"names fold case and separators", SubjectUser, []string{"characters_per_message", "TOP EMOJI"}, "", []Metric{CharactersPerMessage, TopEmoji}, nil},
		{"channel only metric", SubjectChannel, []string{"top-link-sender"}, "", []Metric{TopLinkSender}, nil},
		{"channel metric on users", SubjectUser, []string{"top link sender"}, "", nil, ErrUnknownMetric},
		{"preset", SubjectChannel, nil, "Links", ChannelMetrics[16:21], nil},
		{"unknown preset", SubjectUser, nil, "bogus", nil, ErrUnknownMetric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMetrics(tt.subject, tt.names, tt.preset)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveRanks(t *testing.T) {
	got, err := ResolveRanks(ScopeUser, nil, "emoji")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []Rank{RankEmojiUsed, RankReaction, RankOverallEmoji}) {
		t.Errorf("user emoji preset = %v", got)
	}
	// Users only have the attachment type rank of the links preset.
	if got, _ := ResolveRanks(ScopeUser, nil, "links"); !slices.Equal(got, []Rank{RankAttachmentType}) {
		t.Errorf("user links preset = %v", got)
	}
	if _, err := ResolveRanks(ScopeUser, []string{"link sender"}, ""); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("err = %v", err)
	}
	if got, _ := ResolveRanks(ScopeServer, nil, ""); !slices.Equal(got, ChannelRankColumns) {
		t.Errorf("server default = %v", got)
	}
}

func TestParseSubjectAndScope(t *testing.T) {
	if s, err := ParseSubject("Channels"); err != nil || s != SubjectChannel {
		t.Errorf("ParseSubject = %q, %v", s, err)
	}
	if _, err := ParseSubject("emoji"); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("err = %v", err)
	}
	if s, err := ParseScope(""); err != nil || s != ScopeServer {
		t.Errorf("ParseScope = %q, %v", s, err)
	}
}

func TestEngineDispatch(t *testing.T) {
	e := fixture(t)

	table, err := e.Pivot(SubjectUser, nil, []Metric{Messages})
	if err != nil || len(table.Rows) != 3 {
		t.Fatalf("Pivot users = %v, %v", table, err)
	}
	table, err = e.Pivot(SubjectChannel, nil, []Metric{Messages})
	if err != nil || table.Subject != "Channel" {
		t.Fatalf("Pivot channels = %v, %v", table, err)
	}
	ranks, err := e.Ranks(ScopeChannel, "general", []Rank{RankMessageSender})
	if err != nil || len(ranks.Rows) != 2 {
		t.Fatalf("Ranks = %v, %v", ranks, err)
	}
	points, err := e.Series(SubjectChannel, nil, Messages)
	if err != nil || len(points) != 2 {
		t.Fatalf("Series = %v, %v", points, err)
	}
}
