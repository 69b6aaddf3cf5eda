package handlers

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"discord-warden/bot"
	"discord-warden/enforcement"
	"discord-warden/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

func HandleStatusCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	// Get CPU info
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)

	// Get memory info
	vm, _ := mem.VirtualMemory()

	// Get host info
	hostInfo, _ := host.Info()

	cpuUsage := 0.0
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}

	store := b.Enforcement.Store()
	counts := store.CountByState()

	embed := &discordgo.MessageEmbed{
		Title: "Warden Status",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			{Name: "🐹 Go Version", Value: runtime.Version(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🔼 CPU Count", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU Usage", Value: fmt.Sprintf("%.1f%%", cpuUsage), Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024), Inline: true},
			{Name: "⏱️ WebSocket Latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🌍 Cached Guilds", Value: fmt.Sprintf("%d", len(s.State.Guilds)), Inline: true},
			{Name: "📋 Enforcement Records", Value: fmt.Sprintf("%d", store.Len()), Inline: true},
			{Name: "⏳ Pending", Value: fmt.Sprintf("%d", counts[enforcement.StatePending]), Inline: true},
			{Name: "⚡ Active", Value: fmt.Sprintf("%d", counts[enforcement.StateActive]), Inline: true},
			{Name: "✅ Terminal", Value: fmt.Sprintf("%d", counts[enforcement.StateCompleted]+counts[enforcement.StateCancelled]+counts[enforcement.StateReversed]), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Status as of %s", time.Now().Format("15:04")),
		},
	}

	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name != "user" {
			continue
		}
		target := opt.UserValue(s)
		if fields := userScoreFields(b, i.GuildID, target.ID); fields != nil {
			embed.Fields = append(embed.Fields, fields...)
		}
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	}); err != nil {
		log.Printf("Error sending status response: %v", err)
	}
}

// userScoreFields renders a user's decayed warning score against the
// guild threshold, with the records currently held against them.
func userScoreFields(b *bot.Bot, guildID, userID string) []*discordgo.MessageEmbedField {
	rows, err := warnings.GetWarningsByUser(b.GetDB(), guildID, userID, nil)
	if err != nil {
		log.Printf("Error fetching warning history for status: %v", err)
		return nil
	}

	score, over := b.Enforcement.ComputeWarningScore(guildID, warnings.ToHistory(rows), time.Now())
	threshold := b.GuildEnforcementConfig(guildID).Threshold

	verdict := "below threshold"
	if over {
		verdict = "over threshold"
	}

	return []*discordgo.MessageEmbedField{
		{Name: "👤 User", Value: fmt.Sprintf("<@%s>", userID), Inline: true},
		{Name: "⚖️ Warning Score", Value: fmt.Sprintf("%.2f / %.2f (%s)", score, threshold, verdict), Inline: true},
		{Name: "📜 Warnings", Value: fmt.Sprintf("%d", len(rows)), Inline: true},
	}
}
