package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Settings holds the process configuration, populated once by LoadConfig
type Settings struct {
	DiscordToken   string `env:"DISCORD_BOT_TOKEN,required"`
	AdminPassword  string `env:"BOT_ADMIN_PASSWORD"`
	MemeConfigPath string `env:"MEME_CONFIG_PATH" envDefault:"memes.yaml"`
	AssetPath      string `env:"MEME_ASSET_PATH" envDefault:"."`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

var Cfg Settings

// Read settings from a .env file if present, then the environment
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}
	if err := env.Parse(&Cfg); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	Cfg.AdminPassword = strings.TrimSpace(Cfg.AdminPassword)
	if Cfg.AdminPassword == "" {
		log.Warn("No bot admin password specified")
	}
	return nil
}

func SetupLogging() error {
	level, err := log.ParseLevel(Cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("bad LOG_LEVEL %q: %w", Cfg.LogLevel, err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}
