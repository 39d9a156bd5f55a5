package handlers

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"discord-analyzer/analyzer"
	"discord-analyzer/command"
	"discord-analyzer/models"
	"discord-analyzer/query"
)

func engine(t *testing.T) *query.Engine {
	t.Helper()
	scan := models.NewScan(models.Server{ID: "1", Name: "guild"})
	ts := time.Date(2023, 6, 15, 0, 30, 0, 0, time.UTC) // Thursday
	scan.EnsureChannel("10", "general").Messages = []models.RawMessage{
		{Timestamp: ts, Author: "alice", Content: "hello there", Emoji: []string{"wave"}},
		{Timestamp: ts, Author: "bob", Content: "hi", ReplyingTo: "alice"},
		{Timestamp: ts, Author: "alice", Content: "ok", Emoji: []string{"wave"}},
	}
	scan.Roles = []models.Role{
		{Name: "@everyone", Members: []string{"alice", "bob"}},
		{Name: "mods", Members: []string{"bob"}},
	}
	a, err := analyzer.Analyze(scan, analyzer.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return query.New(a)
}

func strOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func boolOpt(name string, v bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionBoolean, Value: v}
}

func intOpt(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
}

func TestRenderReport(t *testing.T) {
	e := engine(t)

	tests := []struct {
		name    string
		cmd     string
		opts    []*discordgo.ApplicationCommandInteractionDataOption
		want    []string
		wantErr error
	}{
		{
			name: "user table preset",
			cmd:  "table",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptPreset, "messages")},
			want: []string{"Characters per message", "alice", "bob"},
		},
		{
			name: "table role filter",
			cmd:  "table",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptMetrics, "messages, links"), strOpt(command.OptRole, "mods")},
			want: []string{"Links", "bob"},
		},
		{
			name: "channel table",
			cmd:  "table",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptSubject, "channel"), strOpt(command.OptMetrics, "top message sender")},
			want: []string{"general", "alice"},
		},
		{
			name:    "unknown metric",
			cmd:     "table",
			opts:    []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptMetrics, "karma")},
			wantErr: query.ErrUnknownMetric,
		},
		{
			name: "sorted chart",
			cmd:  "chart",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptMetric, "messages"), boolOpt(command.OptSort, true)},
			want: []string{"**Messages**", "alice", "█"},
		},
		{
			name:    "chart of text column",
			cmd:     "chart",
			opts:    []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptMetric, "top emoji")},
			wantErr: query.ErrNotChartable,
		},
		{
			name: "channel ranks",
			cmd:  "ranks",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptScope, "channel"), strOpt(command.OptName, "general"), strOpt(command.OptPreset, "messages")},
			want: []string{"**Channel general**", "Message sender", "alice"},
		},
		{
			name:    "ranks without name",
			cmd:     "ranks",
			opts:    []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptScope, "user")},
			wantErr: errNameRequired,
		},
		{
			name: "emoji table",
			cmd:  "emoji",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{intOpt(command.OptRows, 5)},
			want: []string{"wave", "In messages"},
		},
		{
			name:    "unknown emoji",
			cmd:     "emoji",
			opts:    []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptEmoji, "nope")},
			wantErr: query.ErrUnknownSubject,
		},
		{
			name: "server activity",
			cmd:  "activity",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{boolOpt(command.OptTwelveHour, true)},
			want: []string{"Server by hour", "12 AM", "11 PM", "Server by weekday", "Thu"},
		},
		{
			name: "user summary",
			cmd:  "summary",
			opts: []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptScope, "user"), strOpt(command.OptName, "alice")},
			want: []string{"**User alice**"},
		},
		{
			name:    "unknown user summary",
			cmd:     "summary",
			opts:    []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptScope, "user"), strOpt(command.OptName, "zoe")},
			wantErr: query.ErrUnknownSubject,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderReport(e, tt.cmd, optionMap(tt.opts))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("renderReport() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestRenderReportRoleFilterExcludes(t *testing.T) {
	got, err := renderReport(engine(t), "table", optionMap([]*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptRole, "mods")}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "alice") {
		t.Errorf("mods table lists alice:\n%s", got)
	}
}

func TestSuggest(t *testing.T) {
	e := engine(t)

	tests := []struct {
		name  string
		opts  []*discordgo.ApplicationCommandInteractionDataOption
		field string
		typed string
		want  []string
	}{
		{"user names", []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptScope, "user")}, command.OptName, "AL", []string{"alice"}},
		{"channel names", []*discordgo.ApplicationCommandInteractionDataOption{strOpt(command.OptScope, "channel")}, command.OptName, "", []string{"general"}},
		{"server scope has no names", nil, command.OptName, "", nil},
		{"roles", nil, command.OptRole, "", []string{"@everyone", "mods"}},
		{"emoji", nil, command.OptEmoji, "wa", []string{"wave"}},
		{"chart metric", nil, command.OptMetric, "per message", []string{"Characters per message"}},
		{"last metric of list", nil, command.OptMetrics, "Messages, cha", []string{"Messages, Characters typed", "Messages, Characters per message"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggest(e, optionMap(tt.opts), tt.field, tt.typed)
			if !slices.Equal(got, tt.want) {
				t.Errorf("suggest() = %q, want %q", got, tt.want)
			}
		})
	}
}
