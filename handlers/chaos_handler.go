package handlers

import (
	"fmt"
	"log"

	"discord-warden/bot"
	"discord-warden/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleChaosCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		utils.SendErrorResponse(s, i, "Missing chaos factor.")
		return
	}

	factor := options[0].FloatValue()
	if factor < 0 || factor > 1 {
		utils.SendErrorResponse(s, i, "The chaos factor must be between 0 and 1.")
		return
	}

	if !b.UpdateGuildChaos(i.GuildID, factor) {
		utils.SendErrorResponse(s, i, "This server has no warden configuration.")
		return
	}

	utils.SendSimpleResponse(s, i, fmt.Sprintf("Chaos factor set to %.2f.", factor))

	logMsg := fmt.Sprintf("Chaos factor for guild %s set to %.2f by %s", i.GuildID, factor, i.Member.User.ID)
	if err := utils.LogInfo(s, b.GetConfig().LogChannelID, "Chaos", "Update", logMsg); err != nil {
		log.Printf("Failed to send chaos log: %v", err)
	}
}
