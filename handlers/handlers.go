package handlers

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	"discord-analyzer/bot"
)

// Register all handlers to the bot.
func Register(b *bot.Bot) {
	// Register event handlers
	b.Session.AddHandler(InteractionCreate(b))

	// Guilds arrive after the session opens; load their stored analyses.
	b.Session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if _, ok := b.Registry.Analysis(g.ID); ok {
			return
		}
		if _, err := b.Pipeline.Restore(context.Background(), g.ID); err != nil {
			log.Printf("Could not restore analysis of guild %s: %v", g.ID, err)
		}
	})

	// Add a ready handler to log when the bot is connected.
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}
