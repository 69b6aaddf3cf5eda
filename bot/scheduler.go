package bot

import (
	"log"
	"time"

	"discord-warden/tasks"

	"github.com/robfig/cron/v3"
)

// StatsScheduler drives the recurring enforcement stats embeds: an hourly
// rolling window plus a daily report three times a day.
type StatsScheduler struct {
	bot  *Bot
	cron *cron.Cron
}

func NewStatsScheduler(b *Bot) *StatsScheduler {
	return &StatsScheduler{bot: b, cron: cron.New()}
}

func (s *StatsScheduler) Start() {
	if _, err := s.cron.AddFunc("@hourly", func() {
		s.updateStats(time.Hour)
	}); err != nil {
		log.Printf("Failed to schedule hourly stats: %v", err)
	}
	if _, err := s.cron.AddFunc("0 5,13,21 * * *", func() {
		log.Println("Running daily enforcement report...")
		s.updateStats(24 * time.Hour)
	}); err != nil {
		log.Printf("Failed to schedule daily report: %v", err)
	}
	s.cron.Start()
}

func (s *StatsScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *StatsScheduler) updateStats(window time.Duration) {
	cfg := s.bot.GetConfig()
	if len(cfg.StatsChannels) == 0 {
		return
	}

	for _, channelConfig := range cfg.StatsChannels {
		go tasks.UpdateEnforcementStats(s.bot.GetSession(), s.bot.GetDB(), channelConfig, window)
	}
}
