package questbot

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/questcord/questbot/questbot/database"
)

// LoadConfig reads the toml config and applies environment overrides.
// A .env file, if present, fills in unset environment variables first so
// hosted deployments can configure the token and database without
// touching the config file.
func LoadConfig(path string) (*Config, error) {
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log      LogConfig         `toml:"log"`
	Bot      BotConfig         `toml:"bot"`
	DB       database.DBConfig `toml:"db"`
	Channels ChannelConfig     `toml:"channels"`
	Quest    QuestConfig       `toml:"quest"`
	Web      WebConfig         `toml:"web"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

// ChannelConfig names the outbound sinks: quest drop announcements,
// review outcome notifications, withdrawal approval requests, and
// remaining-slot broadcasts.
type ChannelConfig struct {
	Announcements snowflake.ID `toml:"announcements"`
	Notifications snowflake.ID `toml:"notifications"`
	Withdrawals   snowflake.ID `toml:"withdrawals"`
	Slots         snowflake.ID `toml:"slots"`
}

type QuestConfig struct {
	Milestones        []int64 `toml:"milestones"`
	CooldownSeconds   int     `toml:"cooldown_seconds"`
	ProofTimeoutSecs  int     `toml:"proof_timeout_seconds"`
	FormTimeoutSecs   int     `toml:"form_timeout_seconds"`
	WithdrawalMinimum int64   `toml:"withdrawal_minimum"`
}

type WebConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("TOKEN"); token != "" {
		c.Bot.Token = token
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		c.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		c.DB.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		c.DB.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		c.DB.Database = name
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Web.ListenAddr = ":" + port
	}
}

func (c *Config) applyDefaults() {
	if len(c.Quest.Milestones) == 0 {
		c.Quest.Milestones = []int64{500, 1000, 1500, 2000}
	}
	if c.Quest.CooldownSeconds <= 0 {
		c.Quest.CooldownSeconds = 10
	}
	if c.Quest.ProofTimeoutSecs <= 0 {
		c.Quest.ProofTimeoutSecs = 180
	}
	if c.Quest.FormTimeoutSecs <= 0 {
		c.Quest.FormTimeoutSecs = 60
	}
	if c.Quest.WithdrawalMinimum <= 0 {
		c.Quest.WithdrawalMinimum = 1000
	}
	if c.Web.ListenAddr == "" {
		c.Web.ListenAddr = ":8080"
	}
}
