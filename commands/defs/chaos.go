package defs

import "github.com/bwmarrin/discordgo"

var minChaos = 0.0

var Chaos = &discordgo.ApplicationCommand{
	Name:        "chaos",
	Description: "Tune the chaos factor mixed into warning scores",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionNumber,
			Name:        "factor",
			Description: "Chaos factor between 0 (deterministic) and 1",
			Required:    true,
			MinValue:    &minChaos,
			MaxValue:    1,
		},
	},
}
