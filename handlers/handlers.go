package handlers

import (
	"log"

	"discord-warden/bot"
	"discord-warden/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !requireModerator(s, i, b) {
				return
			}
			HandleWarnCommand(s, i, b)
		},
		"enforcements": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !requireModerator(s, i, b) {
				return
			}
			HandleEnforcementsCommand(s, i, b)
		},
		"chaos": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !requireAdmin(s, i, b) {
				return
			}
			HandleChaosCommand(s, i, b)
		},
		"status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !requireModerator(s, i, b) {
				return
			}
			HandleStatusCommand(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
}

func permissionLevel(i *discordgo.InteractionCreate, b *bot.Bot) string {
	cfg := b.GetConfig()
	settings, ok := cfg.GuildSettings[i.GuildID]
	if !ok || i.Member == nil {
		return utils.GuestPermission
	}
	return utils.CheckPermission(i.Member.Roles, i.Member.User.ID, settings.AdminRoleIDs, settings.ModRoleIDs, cfg.DeveloperUserIDs, cfg.SuperAdminRoleIDs)
}

func requireModerator(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	if utils.CanModerate(permissionLevel(i, b)) {
		return true
	}
	utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
	return false
}

func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	switch permissionLevel(i, b) {
	case utils.DeveloperPermission, utils.SuperAdminPermission, utils.AdminPermission:
		return true
	}
	utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
	return false
}
