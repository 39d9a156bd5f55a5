package handlers

import (
	"github.com/bwmarrin/discordgo"

	"discord-analyzer/bot"
	"discord-analyzer/command"
)

// CommandDispatcher is the central handler for all application command interactions.
// It performs permission checks and then dispatches the interaction to the appropriate handler.
func CommandDispatcher(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	commandName := i.ApplicationCommandData().Name
	requiredLevel, ok := command.RequiredLevel(commandName)
	if !ok {
		respondEphemeral(s, i, "🚫内部错误：Unknown command.")
		return
	}
	if !b.Auth.CheckPermission(i, requiredLevel) {
		respondEphemeral(s, i, "🚫 你没有权限执行此命令")
		return
	}

	switch commandName {
	case "scan":
		HandleScan(b, s, i)
	case "ping":
		HandlePing(s, i)
	default:
		HandleReport(b, s, i)
	}
}
