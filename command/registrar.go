package command

import (
	"github.com/bwmarrin/discordgo"

	"discord-analyzer/utils"
)

// Command is an interface for application commands.
type Command interface {
	Definition() *discordgo.ApplicationCommand
	// Level is the permission level required to run the command.
	Level() string
}

// AllCommands holds all the command instances.
var AllCommands = []Command{
	&ScanCommand{},
	&PingCommand{},
	&TableCommand{},
	&ChartCommand{},
	&RanksCommand{},
	&EmojiCommand{},
	&ActivityCommand{},
	&SummaryCommand{},
}

var levels = func() map[string]string {
	m := make(map[string]string, len(AllCommands))
	for _, cmd := range AllCommands {
		m[cmd.Definition().Name] = cmd.Level()
	}
	return m
}()

// RequiredLevel returns the permission level of the command called name.
func RequiredLevel(name string) (string, bool) {
	level, ok := levels[name]
	return level, ok
}

// GetCommandDefinitions returns a slice of all command definitions.
func GetCommandDefinitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, len(AllCommands))
	for i, cmd := range AllCommands {
		defs[i] = cmd.Definition()
	}
	return defs
}

// Only /scan changes state; every report is open to guests.
func (c *ScanCommand) Level() string     { return utils.LevelAdmin }
func (c *PingCommand) Level() string     { return utils.LevelGuest }
func (c *TableCommand) Level() string    { return utils.LevelGuest }
func (c *ChartCommand) Level() string    { return utils.LevelGuest }
func (c *RanksCommand) Level() string    { return utils.LevelGuest }
func (c *EmojiCommand) Level() string    { return utils.LevelGuest }
func (c *ActivityCommand) Level() string { return utils.LevelGuest }
func (c *SummaryCommand) Level() string  { return utils.LevelGuest }
