package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

// embedFieldLimit is Discord's limit for one embed field value.
const embedFieldLimit = 1024

var levelColors = map[string]int{
	"INFO":  ColorInfo,
	"WARN":  ColorWarn,
	"ERROR": ColorError,
}

// EmbedSender is the part of a session the logger needs.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var (
	session   EmbedSender
	channelID string
)

// InitLogger mirrors log lines to adminChannelID through s.
func InitLogger(s EmbedSender, adminChannelID string) {
	session = s
	channelID = adminChannelID
	if channelID == "" {
		log.Println("Warning: bot.admin_channel_id is not set. Logging to channel will be disabled.")
	}
}

// logEmbed formats one log line for the admin channel.
func logEmbed(level, module, operation, details string, at time.Time) *discordgo.MessageEmbed {
	color, ok := levelColors[level]
	if !ok {
		color = ColorInfo
	}
	if details == "" {
		details = "-"
	}
	if r := []rune(details); len(r) > embedFieldLimit {
		details = string(r[:embedFieldLimit-1]) + "…"
	}
	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", level),
		Color:     color,
		Timestamp: at.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "模块", Value: module, Inline: true},
			{Name: "操作", Value: operation, Inline: true},
			{Name: "附加信息", Value: details},
		},
	}
}

// Log writes a log line and, once InitLogger has a channel, sends it to the
// admin channel.
func Log(level, module, operation, details string) {
	log.Printf("[%s] Module: %s, Operation: %s, Details: %s", level, module, operation, details)
	if session == nil || channelID == "" {
		return
	}
	if _, err := session.ChannelMessageSendEmbed(channelID, logEmbed(level, module, operation, details, time.Now())); err != nil {
		log.Printf("Error sending log message to Discord: %v", err)
	}
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log("INFO", module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log("WARN", module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log("ERROR", module, operation, details)
}
