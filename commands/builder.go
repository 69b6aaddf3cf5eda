package commands

import (
	"discord-warden/commands/defs"
	"discord-warden/model"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the slash commands registered for a guild.
func GenerateCommands(settings *model.GuildSettings) []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Warn,
		defs.Enforcements,
		defs.Chaos,
		defs.Status,
	}
}
