package defs

import "github.com/bwmarrin/discordgo"

var Status = &discordgo.ApplicationCommand{
	Name:        "status",
	Description: "Show bot and enforcement engine status",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Also show this user's current warning score",
			Required:    false,
		},
	},
}
