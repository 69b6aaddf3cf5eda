package bot

import (
	"log"
	"sync/atomic"
	"time"

	"discord-warden/commands"
	"discord-warden/enforcement"
	"discord-warden/model"
	"discord-warden/utils/database/enforcements"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *sqlx.DB
	Entropy            enforcement.Rand
	Enforcement        *enforcement.Service
	Sweeper            *enforcement.Scheduler
	stats              *StatsScheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	// Voice moderation needs the member and voice state caches.
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildVoiceStates
	dg.StateEnabled = true

	b := &Bot{
		Session: dg,
		DB:      db,
		Entropy: enforcement.NewLockedRand(time.Now().UnixNano()),
	}
	b.config.Store(cfg)

	b.Enforcement = enforcement.NewService(
		&sessionModerationAPI{session: dg},
		b,
		enforcement.ServiceOptions{
			Rand:  b.Entropy,
			Audit: enforcements.NewRecorder(db),
		},
	)

	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = enforcement.DefaultSweepInterval
	}
	b.Sweeper = enforcement.NewScheduler(b.Enforcement, interval)
	b.stats = NewStatsScheduler(b)

	return b, nil
}

// GuildEnforcementConfig implements enforcement.ConfigReader, translating
// guild settings into score tuning. Unknown guilds get a zero threshold,
// which means a single warning of weight > 0 would already enforce, so the
// warn handler refuses guilds with no settings before ever scoring.
func (b *Bot) GuildEnforcementConfig(guildID string) enforcement.GuildConfig {
	settings, ok := b.GetConfig().GuildSettings[guildID]
	if !ok {
		return enforcement.GuildConfig{}
	}
	return enforcement.GuildConfig{
		Threshold:     settings.WarnThreshold,
		ChaosFactor:   settings.ChaosFactor,
		DecayHalfLife: time.Duration(settings.DecayHalfLifeDays * 24 * float64(time.Hour)),
	}
}

// UpdateGuildChaos swaps in a config copy with the guild's chaos factor
// changed. The next score computation picks it up.
func (b *Bot) UpdateGuildChaos(guildID string, factor float64) bool {
	old := b.GetConfig()
	settings, ok := old.GuildSettings[guildID]
	if !ok {
		return false
	}
	settings.ChaosFactor = factor

	next := *old
	next.GuildSettings = make(map[string]model.GuildSettings, len(old.GuildSettings))
	for id, s := range old.GuildSettings {
		next.GuildSettings[id] = s
	}
	next.GuildSettings[guildID] = settings
	b.config.Store(&next)
	return true
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.stats.Stop()
	b.Sweeper.Stop()
	b.Session.Close()
}

func (b *Bot) RefreshCommands(guildID string) {
	settings, ok := b.GetConfig().GuildSettings[guildID]
	if !ok {
		log.Printf("Could not find guild settings for guild: %s", guildID)
		return
	}

	cmds := commands.GenerateCommands(&settings)
	log.Printf("Registering %d commands for guild %s...", len(cmds), settings.GuildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, settings.GuildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", settings.GuildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}
