package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"discord-warden/bot"
	"discord-warden/enforcement"
	"discord-warden/model"
	"discord-warden/utils"
	"discord-warden/utils/database/enforcements"
	"discord-warden/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
)

func HandleEnforcementsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		utils.SendErrorResponse(s, i, "Missing subcommand.")
		return
	}

	sub := data.Options[0]
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		optionMap[opt.Name] = opt
	}

	switch sub.Name {
	case "list":
		handleEnforcementList(s, i, b, optionMap)
	case "cancel":
		handleEnforcementCancel(s, i, b, optionMap)
	case "cancel_all":
		handleEnforcementCancelAll(s, i, b, optionMap)
	default:
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
	}
}

func handleEnforcementList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	targetUser := optionMap["user"].UserValue(s)
	includeAll := false
	if opt, ok := optionMap["all"]; ok {
		includeAll = opt.BoolValue()
	}

	var records []enforcement.Record
	if includeAll {
		records = b.Enforcement.Store().AllForTarget(targetUser.ID, i.GuildID)
	} else {
		records = b.Enforcement.ExistingForTarget(targetUser.ID, i.GuildID)
	}

	// With all=true the persisted audit trail fills in enforcements from
	// before the last restart; rows still present in memory are skipped.
	var history []model.EnforcementAudit
	if includeAll {
		rows, err := enforcements.GetAuditRecordsByUser(b.GetDB(), i.GuildID, targetUser.ID)
		if err != nil {
			log.Printf("Failed to load enforcement history for user %s: %v", targetUser.ID, err)
		} else {
			seen := make(map[string]bool, len(records))
			for _, rec := range records {
				seen[rec.ID] = true
			}
			for _, row := range rows {
				if !seen[row.RecordID] {
					history = append(history, row)
				}
			}
		}
	}

	if len(records) == 0 && len(history) == 0 {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("No enforcements found for <@%s>.", targetUser.ID))
		return
	}

	var builder strings.Builder
	for _, rec := range records {
		builder.WriteString(fmt.Sprintf("`%s` — **%s** (%s), execute <t:%d:R>", rec.ID, rec.Action.Kind, rec.State, rec.ExecuteAt.Unix()))
		if !rec.ReverseAt.IsZero() {
			builder.WriteString(fmt.Sprintf(", reverse <t:%d:R>", rec.ReverseAt.Unix()))
		}
		if reason := triggeringReason(b, rec.WarningID); reason != "" {
			builder.WriteString(" — ")
			builder.WriteString(reason)
		}
		builder.WriteString("\n")
	}

	if len(history) > 0 {
		builder.WriteString("\n**Past (persisted)**\n")
		for _, row := range history {
			builder.WriteString(fmt.Sprintf("`%s` — **%s** (%s), <t:%d:R>\n", row.RecordID, row.ActionType, row.State, row.CreatedAt))
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Enforcements for %s", targetUser.Username),
		Description: builder.String(),
		Color:       0x5865F2,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		log.Printf("Error sending enforcement list: %v", err)
	}
}

// triggeringReason resolves an enforcement's warning reference back to the
// warning row's reason, or empty when it cannot be resolved.
func triggeringReason(b *bot.Bot, warningRef string) string {
	id, err := strconv.ParseInt(warningRef, 10, 64)
	if err != nil {
		return ""
	}
	w, err := warnings.GetWarningByID(b.GetDB(), id)
	if err != nil {
		log.Printf("Failed to load warning %d: %v", id, err)
		return ""
	}
	return w.Reason
}

func handleEnforcementCancel(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	id := optionMap["id"].StringValue()

	err := b.Enforcement.Cancel(id)
	switch {
	case errors.Is(err, enforcement.ErrNotFound):
		utils.SendErrorResponse(s, i, fmt.Sprintf("No enforcement found with ID `%s`.", id))
	case errors.Is(err, enforcement.ErrInvalidTransition):
		utils.SendErrorResponse(s, i, "That enforcement has already finished and cannot be cancelled.")
	case err != nil:
		log.Printf("Failed to cancel enforcement %s: %v", id, err)
		utils.SendErrorResponse(s, i, "Failed to cancel the enforcement.")
	default:
		utils.SendSimpleResponse(s, i, fmt.Sprintf("Enforcement `%s` cancelled.", id))
		logMsg := fmt.Sprintf("Enforcement %s cancelled by %s", id, i.Member.User.ID)
		if err := utils.LogInfo(s, b.GetConfig().LogChannelID, "Enforcement", "Cancel", logMsg); err != nil {
			log.Printf("Failed to send cancel log: %v", err)
		}
	}
}

func handleEnforcementCancelAll(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	targetUser := optionMap["user"].UserValue(s)

	cancelled := b.Enforcement.CancelAllForTarget(targetUser.ID, i.GuildID)
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Cancelled %d enforcement(s) for <@%s>.", cancelled, targetUser.ID))

	if cancelled > 0 {
		logMsg := fmt.Sprintf("%d enforcement(s) for user %s cancelled by %s", cancelled, targetUser.ID, i.Member.User.ID)
		if err := utils.LogInfo(s, b.GetConfig().LogChannelID, "Enforcement", "CancelAll", logMsg); err != nil {
			log.Printf("Failed to send cancel log: %v", err)
		}
	}
}
