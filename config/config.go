package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"discord-warden/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables and the YAML
// guild config file.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	cfg := &model.Config{
		BotToken:          token,
		AppID:             appID,
		LogChannelID:      logChannelID,
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		DeveloperUserIDs:  splitIDs(os.Getenv("DEVELOPER_USER_IDS")),
		SuperAdminRoleIDs: splitIDs(os.Getenv("SUPER_ADMIN_ROLE_IDS")),
		GuildSettings:     make(map[string]model.GuildSettings),
	}

	if err := loadGuildFile(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadGuildFile reads data/warden.yaml into the config. A missing file is
// not fatal; the bot just runs with no guilds enabled.
func loadGuildFile(cfg *model.Config) error {
	v := viper.New()
	v.SetConfigName("warden")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")
	v.SetDefault("sweep_interval", 5*time.Second)
	v.SetDefault("warning_db_path", "data/warden.db")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Warning: data/warden.yaml not found, no guilds configured")
			cfg.SweepInterval = v.GetDuration("sweep_interval")
			cfg.WarningDBPath = v.GetString("warning_db_path")
			return nil
		}
		return fmt.Errorf("failed to read guild config file: %w", err)
	}

	var file struct {
		SweepInterval time.Duration                  `mapstructure:"sweep_interval"`
		WarningDBPath string                         `mapstructure:"warning_db_path"`
		Guilds        map[string]model.GuildSettings `mapstructure:"guilds"`
		StatsChannels []model.StatsChannel           `mapstructure:"stats_channels"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return fmt.Errorf("failed to parse guild config file: %w", err)
	}

	cfg.SweepInterval = file.SweepInterval
	cfg.WarningDBPath = file.WarningDBPath
	cfg.StatsChannels = file.StatsChannels
	for guildID, settings := range file.Guilds {
		if settings.GuildID == "" {
			settings.GuildID = guildID
		}
		cfg.GuildSettings[guildID] = settings
	}
	return nil
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
