package handlers

import (
	"fmt"
	"log"
	"time"

	"discord-warden/bot"
	"discord-warden/enforcement"
	"discord-warden/model"
	"discord-warden/utils"
	"discord-warden/utils/database/enforcements"
	"discord-warden/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
)

func HandleWarnCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	settings, ok := b.GetConfig().GuildSettings[i.GuildID]
	if !ok || !settings.Enable {
		utils.SendFollowUpError(s, i.Interaction, "This server has no warden configuration.")
		return
	}

	options := i.ApplicationCommandData().Options
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}

	targetUser := optionMap["user"].UserValue(s)
	reason := optionMap["reason"].StringValue()
	weight := 1.0
	if opt, ok := optionMap["weight"]; ok {
		weight = opt.FloatValue()
	}

	if targetUser.Bot {
		utils.SendFollowUpError(s, i.Interaction, "Bots cannot be warned.")
		return
	}

	if !utils.CheckAndSetWarnLock(i.GuildID, targetUser.ID) {
		utils.SendFollowUpError(s, i.Interaction, "This user was warned moments ago; try again shortly.")
		return
	}

	now := time.Now()
	warningID, err := warnings.AddWarning(b.GetDB(), model.Warning{
		GuildID:      i.GuildID,
		UserID:       targetUser.ID,
		UserUsername: targetUser.Username,
		ModID:        i.Member.User.ID,
		Reason:       reason,
		Weight:       weight,
		Timestamp:    now.Unix(),
	})
	if err != nil {
		log.Printf("Error saving warning record: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to save the warning record.")
		return
	}

	rows, err := warnings.GetWarningsByUser(b.GetDB(), i.GuildID, targetUser.ID, nil)
	if err != nil {
		log.Printf("Error fetching warning history: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to load the warning history.")
		return
	}

	guildCfg := b.GuildEnforcementConfig(i.GuildID)
	score, enforce := b.Enforcement.ComputeWarningScore(i.GuildID, warnings.ToHistory(rows), now)

	embed := &discordgo.MessageEmbed{
		Title: "Warning Issued",
		Color: 0xFEE75C,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", targetUser.ID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", i.Member.User.ID), Inline: true},
			{Name: "Weight", Value: fmt.Sprintf("%.1f", weight), Inline: true},
			{Name: "Reason", Value: reason},
			{Name: "Score", Value: fmt.Sprintf("%.2f / %.2f", score, guildCfg.Threshold), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Warning #%d", warningID)},
	}

	if enforce {
		outcome := applyEnforcement(s, b, i.GuildID, targetUser.ID, warnings.WarningRef(warningID), settings)
		embed.Color = 0xED4245
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Enforcement", Value: outcome})
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		log.Printf("Error sending warn response: %v", err)
	}

	logMsg := fmt.Sprintf("User %s warned by %s (weight %.1f, score %.2f): %s",
		targetUser.ID, i.Member.User.ID, weight, score, reason)
	if err := utils.LogInfo(s, b.GetConfig().LogChannelID, "Warn", "Issue", logMsg); err != nil {
		log.Printf("Failed to send warn log: %v", err)
	}
}

// applyEnforcement picks and schedules the action for a user whose score
// crossed the threshold, and returns a human-readable outcome line.
func applyEnforcement(s *discordgo.Session, b *bot.Bot, guildID, userID, warningRef string, settings model.GuildSettings) string {
	// A user already under enforcement is not stacked with another one.
	if existing := b.Enforcement.ExistingForTarget(userID, guildID); len(existing) > 0 {
		logMsg := fmt.Sprintf("User %s crossed the threshold with %d enforcement(s) already open", userID, len(existing))
		if err := utils.LogWarn(s, b.GetConfig().LogChannelID, "Enforcement", "Skip", logMsg); err != nil {
			log.Printf("Failed to send skip log: %v", err)
		}
		return fmt.Sprintf("Skipped: %d enforcement(s) already pending or active.", len(existing))
	}

	// Prior finalized enforcements mark a repeat offender; a history read
	// failure degrades to first-offence treatment.
	prior, err := enforcements.GetAuditRecordsByUser(b.GetDB(), guildID, userID)
	if err != nil {
		log.Printf("Failed to load enforcement history for user %s: %v", userID, err)
	}

	_, voiceErr := s.State.VoiceState(guildID, userID)
	action := chooseAction(voiceErr == nil, len(prior), b.Entropy, settings)

	rec, err := b.Enforcement.CreateEnforcement(warningRef, enforcement.Target{UserID: userID, GuildID: guildID}, action)
	if err != nil {
		log.Printf("Failed to create enforcement for user %s: %v", userID, err)
		logMsg := fmt.Sprintf("Could not schedule %s for user %s: %v", action.Kind, userID, err)
		if lerr := utils.LogError(s, b.GetConfig().LogChannelID, "Enforcement", "Create", logMsg); lerr != nil {
			log.Printf("Failed to send create-failure log: %v", lerr)
		}
		return "Failed to schedule an enforcement action."
	}

	// Immediate actions should not wait for the next sweep tick.
	if action.IsImmediate() {
		b.Sweeper.Wake()
	}

	if action.NeedsReversal() {
		return fmt.Sprintf("%s for %s (record `%s`)", action.Kind, action.Params.Duration, rec.ID)
	}
	return fmt.Sprintf("%s (record `%s`)", action.Kind, rec.ID)
}

// chooseAction maps the threshold crossing onto a concrete action. Users
// outside voice can only be timed out. A first-time voice offender gets
// the plain voice mute; repeat offenders draw one of the escalated voice
// actions at random.
func chooseAction(inVoice bool, priorEnforcements int, rng enforcement.Rand, settings model.GuildSettings) enforcement.Action {
	const reason = "warning score over threshold"

	if !inVoice {
		return enforcement.NewMute(settings.MuteDurationOrDefault(), reason)
	}
	if priorEnforcements == 0 {
		return enforcement.NewVoiceMute(settings.VoiceMuteDurationOrDefault(), reason)
	}

	switch rng.Intn(4) {
	case 0:
		return enforcement.NewVoiceMute(settings.VoiceMuteDurationOrDefault(), reason)
	case 1:
		return enforcement.NewVoiceDeafen(settings.DeafenDurationOrDefault(), reason)
	case 2:
		return enforcement.NewVoiceDisconnect(0, reason)
	default:
		return enforcement.NewVoiceChannelHaunt(0, 0, true, "")
	}
}
