package model

import "time"

// GuildSettings 定义了每个服务器的执法配置
type GuildSettings struct {
	Name              string   `mapstructure:"name"`
	GuildID           string   `mapstructure:"guild_id"`
	Enable            bool     `mapstructure:"enable"`
	AdminRoleIDs      []string `mapstructure:"admin_role_ids"`
	ModRoleIDs        []string `mapstructure:"mod_role_ids"`
	WarnThreshold     float64  `mapstructure:"warn_threshold"`
	ChaosFactor       float64  `mapstructure:"chaos_factor"`
	DecayHalfLifeDays float64  `mapstructure:"decay_half_life_days"`

	// Escalation durations. Zero values fall back to the defaults below.
	MuteDuration      time.Duration `mapstructure:"mute_duration"`
	VoiceMuteDuration time.Duration `mapstructure:"voice_mute_duration"`
	DeafenDuration    time.Duration `mapstructure:"deafen_duration"`
}

const (
	DefaultMuteDuration      = 10 * time.Minute
	DefaultVoiceMuteDuration = 20 * time.Minute
	DefaultDeafenDuration    = 15 * time.Minute
)

func (g GuildSettings) MuteDurationOrDefault() time.Duration {
	if g.MuteDuration > 0 {
		return g.MuteDuration
	}
	return DefaultMuteDuration
}

func (g GuildSettings) VoiceMuteDurationOrDefault() time.Duration {
	if g.VoiceMuteDuration > 0 {
		return g.VoiceMuteDuration
	}
	return DefaultVoiceMuteDuration
}

func (g GuildSettings) DeafenDurationOrDefault() time.Duration {
	if g.DeafenDuration > 0 {
		return g.DeafenDuration
	}
	return DefaultDeafenDuration
}

// StatsChannel points a recurring enforcement stats embed at a channel.
type StatsChannel struct {
	TargetGuildID string `mapstructure:"target_guild_id"`
	ChannelID     string `mapstructure:"channel_id"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken          string
	AppID             string
	LogChannelID      string
	MetricsAddr       string
	DeveloperUserIDs  []string
	SuperAdminRoleIDs []string
	WarningDBPath     string
	SweepInterval     time.Duration
	GuildSettings     map[string]GuildSettings
	StatsChannels     []StatsChannel
}
