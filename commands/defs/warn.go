package defs

import "github.com/bwmarrin/discordgo"

var minWeight = 0.1

var Warn = &discordgo.ApplicationCommand{
	Name:        "warn",
	Description: "Warn a user and escalate to enforcement when their score crosses the threshold",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The user to warn",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionNumber,
			Name:        "weight",
			Description: "Weight of the warning (default 1)",
			Required:    false,
			MinValue:    &minWeight,
			MaxValue:    10,
		},
	},
}
