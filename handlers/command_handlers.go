package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"discord-analyzer/bot"
	"discord-analyzer/command"
	"discord-analyzer/query"
)

// guildOf returns the guild an interaction reports on.
func guildOf(b *bot.Bot, i *discordgo.InteractionCreate) string {
	if i.GuildID != "" {
		return i.GuildID
	}
	return b.Config.Bot.GuildID
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

// HandleScan handles the logic for the /scan command.
func HandleScan(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	o := optionMap(i.ApplicationCommandData().Options)
	full := o.str(command.OptMode) == "full"
	guildID := guildOf(b, i)
	if guildID == "" {
		respondEphemeral(s, i, "Error: this command must be used inside a server.")
		return
	}

	// Respond to the interaction immediately.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("Error deferring scan response: %v", err)
		return
	}

	// Run the scanning in a goroutine.
	go func() {
		log.Printf("Starting manual scan (full: %v, guild: %s)", full, guildID)
		res, err := b.Pipeline.Run(context.Background(), guildID, full)
		log.Printf("Manual scan finished (guild: %s)", guildID)

		var content string
		switch {
		case errors.Is(err, bot.ErrScanRunning):
			content = "⏳ A scan is already running, try again when it has finished."
		case err != nil && res.Server == "":
			content = fmt.Sprintf("❌ Scan failed: %v", err)
		case err != nil:
			content = fmt.Sprintf("⚠️ Scan of **%s** finished with errors: %d channels, %d new messages, %d total.\n%v",
				res.Server, res.Channels, res.Added, res.Messages, err)
		default:
			content = fmt.Sprintf("✅ Scan of **%s** has completed: %d channels, %d new messages, %d total.",
				res.Server, res.Channels, res.Added, res.Messages)
		}
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: truncate(content)}); err != nil {
			log.Printf("Error sending scan followup: %v", err)
		}
	}()
}

// HandlePing handles the logic for the /ping command.
func HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pong!",
		},
	})
}

// HandleReport answers the table, chart, ranks, emoji, activity and summary
// commands from the current analysis of the guild.
func HandleReport(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	a, ok := b.Registry.Analysis(guildOf(b, i))
	if !ok {
		respondEphemeral(s, i, "📭 No statistics yet. An admin can run /scan to build them.")
		return
	}

	content, err := renderReport(query.New(a), data.Name, optionMap(data.Options))
	if err != nil {
		respondEphemeral(s, i, "⚠️ "+err.Error())
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		log.Printf("Error responding to /%s: %v", data.Name, err)
	}
}
