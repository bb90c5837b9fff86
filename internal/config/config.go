package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	App struct {
		ID string `yaml:"id"` // namespace for all store keys
	} `yaml:"app"`
	Admin struct {
		UserID string `yaml:"userId"` // Telegram id allowed on /admin/quiz
	} `yaml:"admin"`
	Telegram struct {
		BotToken string `yaml:"botToken"`
	} `yaml:"telegram"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		TokenTTL  string `yaml:"tokenTtl"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"` // cache TTL for secure quiz copies
	} `yaml:"quiz"`
}

// Load reads YAML config from path and applies environment overrides for
// deployment secrets.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ID"); v != "" {
		c.App.ID = v
	}
	if v := os.Getenv("ADMIN_USER_ID"); v != "" {
		c.Admin.UserID = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		c.Postgres.URL = v
	}
}

func (c *Config) validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token not configured (telegram.botToken or TELEGRAM_BOT_TOKEN)")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret not configured (auth.jwtSecret or JWT_SECRET)")
	}
	if c.App.ID == "" {
		c.App.ID = "footy-iq"
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
