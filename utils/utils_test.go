package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"discord-analyzer/models"
)

type recordingSender struct {
	channels []string
	embeds   []*discordgo.MessageEmbed
}

func (r *recordingSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.channels = append(r.channels, channelID)
	r.embeds = append(r.embeds, embed)
	return &discordgo.Message{}, nil
}

func TestLogSendsEmbed(t *testing.T) {
	rec := &recordingSender{}
	InitLogger(rec, "admin")
	t.Cleanup(func() { InitLogger(nil, "") })

	Warn("scanner", "scan finished with errors", strings.Repeat("x", 2000))
	Info("scanner", "scan started", "")

	if len(rec.embeds) != 2 || rec.channels[0] != "admin" {
		t.Fatalf("sent %d embeds to %v", len(rec.embeds), rec.channels)
	}
	warn := rec.embeds[0]
	if warn.Color != ColorWarn || warn.Fields[0].Value != "scanner" {
		t.Errorf("warn embed = %+v", warn)
	}
	if n := utf8.RuneCountInString(warn.Fields[2].Value); n != embedFieldLimit {
		t.Errorf("details length = %d, want %d", n, embedFieldLimit)
	}
	if got := rec.embeds[1].Fields[2].Value; got != "-" {
		t.Errorf("empty details = %q, want -", got)
	}
}

func TestLogWithoutChannel(t *testing.T) {
	rec := &recordingSender{}
	InitLogger(rec, "")
	t.Cleanup(func() { InitLogger(nil, "") })

	Error("config", "load", "boom")
	if len(rec.embeds) != 0 {
		t.Errorf("sent %d embeds without admin channel", len(rec.embeds))
	}
}

func TestCheckPermission(t *testing.T) {
	auth := NewAuth(models.CommandsConfig{Auth: models.AuthConfig{
		Developers:  []string{"dev"},
		AdminsRoles: []string{"role-admin"},
	}})

	member := func(id string, perms int64, roles ...string) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: id}, Permissions: perms, Roles: roles},
		}}
	}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "dev"}}}

	tests := []struct {
		name  string
		i     *discordgo.InteractionCreate
		level string
		want  bool
	}{
		{"guest", member("u", 0), LevelGuest, true},
		{"plain member is not admin", member("u", 0), LevelAdmin, false},
		{"admin role", member("u", 0, "role-admin"), LevelAdmin, true},
		{"administrator permission", member("u", discordgo.PermissionAdministrator), LevelAdmin, true},
		{"developer is admin", member("dev", 0), LevelAdmin, true},
		{"admin is not developer", member("u", 0, "role-admin"), LevelDeveloper, false},
		{"developer in DM", dm, LevelDeveloper, true},
		{"unknown level", member("dev", 0), "owner", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.CheckPermission(tt.i, tt.level); got != tt.want {
				t.Errorf("CheckPermission() = %v, want %v", got, tt.want)
			}
		})
	}
}
