package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI       string        `env:"DATABASE_URI"`
	EvolutionAPIURL   string        `env:"EVOLUTION_API_URL"`
	EvolutionAPIKey   string        `env:"EVOLUTION_API_KEY"`
	WhatsAppInstance  string        `env:"WHATSAPP_INSTANCE"`
	PublicURL         string        `env:"PUBLIC_URL"`
	Port              string        `env:"PORT" env-default:"3000"`
	LogPath           string        `env:"LOG_PATH"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" env-default:"1m"`
	SendTimeout       time.Duration `env:"SEND_TIMEOUT" env-default:"15s"`
}

func Load() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
