package handlers

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"discord-analyzer/bot"
	"discord-analyzer/command"
	"discord-analyzer/query"
)

// maxChoices is Discord's limit on autocomplete choices.
const maxChoices = 25

// HandleAutocomplete handles all autocomplete interactions.
func HandleAutocomplete(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	var focused *discordgo.ApplicationCommandInteractionDataOption
	for _, opt := range data.Options {
		if opt.Focused {
			focused = opt
		}
	}
	if focused == nil {
		return
	}

	var values []string
	if a, ok := b.Registry.Analysis(guildOf(b, i)); ok {
		values = suggest(query.New(a), optionMap(data.Options), focused.Name, focused.StringValue())
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, v := range values {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		log.Printf("Error responding to autocomplete interaction: %v", err)
	}
}

// suggest lists the values of option field matching what was typed so far.
func suggest(e *query.Engine, o options, field, typed string) []string {
	subject, _ := query.ParseSubject(o.str(command.OptSubject))

	var candidates []string
	prefix := ""
	switch field {
	case command.OptName:
		scope, _ := query.ParseScope(o.str(command.OptScope))
		switch scope {
		case query.ScopeChannel:
			candidates = e.Channels()
		case query.ScopeUser:
			candidates = e.Users()
		}
	case command.OptRole:
		candidates = e.Roles()
	case command.OptEmoji:
		candidates = e.Analysis().Emoji.Keys()
	case command.OptMetric:
		candidates = metricNames(chartMetrics(subject))
	case command.OptMetrics:
		// Complete the last entry of the comma separated list.
		if idx := strings.LastIndex(typed, ","); idx >= 0 {
			prefix = typed[:idx+1] + " "
			typed = typed[idx+1:]
		}
		candidates = metricNames(subjectMetrics(subject))
	}

	typed = strings.ToLower(strings.TrimSpace(typed))
	var out []string
	for _, c := range candidates {
		if !strings.Contains(strings.ToLower(c), typed) {
			continue
		}
		out = append(out, prefix+c)
		if len(out) == maxChoices {
			break
		}
	}
	return out
}

func metricNames(metrics []query.Metric) []string {
	out := make([]string, len(metrics))
	for i, m := range metrics {
		out[i] = string(m)
	}
	return out
}
