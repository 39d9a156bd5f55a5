package command

import "github.com/bwmarrin/discordgo"

// Option names shared by the definitions and the handlers.
const (
	OptMode       = "mode"
	OptSubject    = "subject"
	OptPreset     = "preset"
	OptMetrics    = "metrics"
	OptMetric     = "metric"
	OptRole       = "role"
	OptSort       = "sort"
	OptScope      = "scope"
	OptName       = "name"
	OptRows       = "rows"
	OptEmoji      = "emoji"
	OptTwelveHour = "twelve_hour"
)

func subjectOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        OptSubject,
		Description: "Rows of the table",
		Type:        discordgo.ApplicationCommandOptionString,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Users", Value: "user"},
			{Name: "Channels", Value: "channel"},
		},
	}
}

func scopeOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Name:        OptScope,
			Description: "What to report on",
			Type:        discordgo.ApplicationCommandOptionString,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Server", Value: "server"},
				{Name: "Channel", Value: "channel"},
				{Name: "User", Value: "user"},
			},
		},
		{
			Name:         OptName,
			Description:  "Channel or user name",
			Type:         discordgo.ApplicationCommandOptionString,
			Autocomplete: true,
		},
	}
}

func presetChoices(names ...string) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(names))
	for i, n := range names {
		out[i] = &discordgo.ApplicationCommandOptionChoice{Name: n, Value: n}
	}
	return out
}

// ScanCommand defines the structure for the /scan command.
type ScanCommand struct{}

// Definition returns the application command definition.
func (c *ScanCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "scan",
		Description: "Scan the message history and rebuild the statistics",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        OptMode,
				Description: "The mode of scan to perform",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Update", Value: "update"},
					{Name: "Full Scan", Value: "full"},
				},
			},
		},
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}

// TableCommand defines the /table pivot table report.
type TableCommand struct{}

// Definition returns the application command definition.
func (c *TableCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "table",
		Description: "Show a table of users or channels",
		Options: []*discordgo.ApplicationCommandOption{
			subjectOption(),
			{
				Name:        OptPreset,
				Description: "Group of columns",
				Type:        discordgo.ApplicationCommandOptionString,
				Choices:     presetChoices("messages", "emoji", "replies", "links", "overview"),
			},
			{
				Name:         OptMetrics,
				Description:  "Comma separated column names, overrides the preset",
				Type:         discordgo.ApplicationCommandOptionString,
				Autocomplete: true,
			},
			{
				Name:         OptRole,
				Description:  "Only list members of this role",
				Type:         discordgo.ApplicationCommandOptionString,
				Autocomplete: true,
			},
		},
	}
}

// ChartCommand defines the /chart bar chart of one column.
type ChartCommand struct{}

// Definition returns the application command definition.
func (c *ChartCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "chart",
		Description: "Draw one column as a bar chart",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         OptMetric,
				Description:  "Column to draw",
				Type:         discordgo.ApplicationCommandOptionString,
				Required:     true,
				Autocomplete: true,
			},
			subjectOption(),
			{
				Name:         OptRole,
				Description:  "Only list members of this role",
				Type:         discordgo.ApplicationCommandOptionString,
				Autocomplete: true,
			},
			{
				Name:        OptSort,
				Description: "Largest first",
				Type:        discordgo.ApplicationCommandOptionBoolean,
			},
		},
	}
}

// RanksCommand defines the /ranks report.
type RanksCommand struct{}

// Definition returns the application command definition.
func (c *RanksCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ranks",
		Description: "Show the top entries of each dimension",
		Options: append(scopeOptions(), &discordgo.ApplicationCommandOption{
			Name:        OptPreset,
			Description: "Group of rank columns",
			Type:        discordgo.ApplicationCommandOptionString,
			Choices:     presetChoices("messages", "emoji", "replies", "links", "all"),
		}),
	}
}

// EmojiCommand defines the /emoji ranking.
type EmojiCommand struct{}

// Definition returns the application command definition.
func (c *EmojiCommand) Definition() *discordgo.ApplicationCommand {
	minRows := 1.0
	return &discordgo.ApplicationCommand{
		Name:        "emoji",
		Description: "Rank emoji by use in messages and reactions",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        OptRows,
				Description: "Number of emoji to list",
				Type:        discordgo.ApplicationCommandOptionInteger,
				MinValue:    &minRows,
				MaxValue:    50,
			},
			{
				Name:         OptEmoji,
				Description:  "Describe a single emoji",
				Type:         discordgo.ApplicationCommandOptionString,
				Autocomplete: true,
			},
		},
	}
}

// ActivityCommand defines the /activity time bucket charts.
type ActivityCommand struct{}

// Definition returns the application command definition.
func (c *ActivityCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "activity",
		Description: "Show messages per hour and per weekday",
		Options: append(scopeOptions(), &discordgo.ApplicationCommandOption{
			Name:        OptTwelveHour,
			Description: "Label hours as 1 AM .. 11 PM",
			Type:        discordgo.ApplicationCommandOptionBoolean,
		}),
	}
}

// SummaryCommand defines the /summary report.
type SummaryCommand struct{}

// Definition returns the application command definition.
func (c *SummaryCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "summary",
		Description: "Show the headline totals of the server, a channel or a user",
		Options:     scopeOptions(),
	}
}
