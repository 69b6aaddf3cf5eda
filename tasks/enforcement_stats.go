package tasks

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"discord-warden/model"
	"discord-warden/utils/database/enforcements"
	"discord-warden/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

func GenerateEnforcementStatsEmbed(db *sqlx.DB, targetGuildID string, window time.Duration) (*discordgo.MessageEmbed, error) {
	since := time.Now().Add(-window)

	warnTotal, err := warnings.GetTotalWarningCount(db, targetGuildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get warning count for guild %s: %w", targetGuildID, err)
	}
	modStats, err := warnings.GetModWarningStats(db, targetGuildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get mod warning stats for guild %s: %w", targetGuildID, err)
	}

	enfTotal, err := enforcements.GetTotalEnforcementCount(db, targetGuildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get enforcement count for guild %s: %w", targetGuildID, err)
	}
	actionStats, err := enforcements.GetActionStats(db, targetGuildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get action stats for guild %s: %w", targetGuildID, err)
	}

	var sortedMods []string
	for modID := range modStats {
		sortedMods = append(sortedMods, modID)
	}
	sort.Slice(sortedMods, func(i, j int) bool {
		return modStats[sortedMods[i]] > modStats[sortedMods[j]]
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("### Moderation activity over the past %s\n", window.String()))
	builder.WriteString(fmt.Sprintf("**Warnings: %d — Enforcements: %d**\n\n", warnTotal, enfTotal))

	if len(sortedMods) > 0 {
		builder.WriteString("**Warnings per moderator:**\n")
		for i, modID := range sortedMods {
			builder.WriteString(fmt.Sprintf("%d. <@%s>: %d\n", i+1, modID, modStats[modID]))
		}
	}

	if len(actionStats) > 0 {
		var sortedActions []string
		for action := range actionStats {
			sortedActions = append(sortedActions, action)
		}
		sort.Strings(sortedActions)

		builder.WriteString("\n**Enforcements by action:**\n")
		for _, action := range sortedActions {
			builder.WriteString(fmt.Sprintf("- %s: %d\n", action, actionStats[action]))
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Enforcement Statistics",
		Description: builder.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
		Color:       0x00ff00,
	}
	return embed, nil
}

// UpdateEnforcementStats sends or edits the stats embed for one channel.
func UpdateEnforcementStats(s *discordgo.Session, db *sqlx.DB, config model.StatsChannel, window time.Duration) {
	embed, err := GenerateEnforcementStatsEmbed(db, config.TargetGuildID, window)
	if err != nil {
		log.Printf("Failed to generate enforcement stats embed: %v", err)
		return
	}

	messageID, err := enforcements.GetStatsMessageID(db, config.ChannelID)
	if err != nil {
		log.Printf("Failed to look up stats message for channel %s: %v", config.ChannelID, err)
		return
	}

	if messageID == "" {
		msg, err := s.ChannelMessageSendEmbed(config.ChannelID, embed)
		if err != nil {
			log.Printf("Failed to send enforcement stats message to channel %s: %v", config.ChannelID, err)
			return
		}
		if err := enforcements.SetStatsMessageID(db, config.ChannelID, msg.ID); err != nil {
			log.Printf("Failed to store stats message ID for channel %s: %v", config.ChannelID, err)
		}
		return
	}

	if _, err := s.ChannelMessageEditEmbed(config.ChannelID, messageID, embed); err != nil {
		log.Printf("Failed to edit enforcement stats message %s in channel %s: %v", messageID, config.ChannelID, err)
	}
}
