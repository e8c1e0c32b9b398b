package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"vagabot-engine/internal/filter"
)

type SourceToggle struct {
	Enabled  bool `yaml:"enabled"`
	MaxPages int  `yaml:"max_pages"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scraping struct {
		Keywords             []string `yaml:"keywords"`
		IntervalHours        int      `yaml:"interval_hours"`
		SourceTimeoutSeconds int      `yaml:"source_timeout_seconds"`

		Sources struct {
			Gupy     SourceToggle `yaml:"gupy"`
			Indeed   SourceToggle `yaml:"indeed"`
			LinkedIn SourceToggle `yaml:"linkedin"`
		} `yaml:"sources"`
	} `yaml:"scraping"`

	Filters filter.Config `yaml:"filters"`

	Delivery struct {
		BatchSize              int    `yaml:"batch_size"`
		DispatchTimeoutSeconds int    `yaml:"dispatch_timeout_seconds"`
		TelegramToken          string `yaml:"telegram_token"`
		TelegramChatID         int64  `yaml:"telegram_chat_id"`
		SendStatus             bool   `yaml:"send_status"`
	} `yaml:"delivery"`

	Email struct {
		Enabled          bool     `yaml:"enabled"`
		IMAPHost         string   `yaml:"imap_host"`
		IMAPPort         int      `yaml:"imap_port"`
		Username         string   `yaml:"username"`
		Mailbox          string   `yaml:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any"`
	} `yaml:"email"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// applyEnv lets secrets stay out of the yaml file. godotenv is loaded by
// the command layer before Load runs.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Delivery.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Delivery.TelegramChatID = id
		}
	}
	if v := os.Getenv("VAGABOT_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "."
	}
	if len(cfg.Scraping.Keywords) == 0 {
		cfg.Scraping.Keywords = []string{"vagas"}
	}
	if cfg.Scraping.IntervalHours <= 0 {
		cfg.Scraping.IntervalHours = 1
	}
	if cfg.Scraping.SourceTimeoutSeconds <= 0 {
		cfg.Scraping.SourceTimeoutSeconds = 120
	}
	if cfg.Delivery.BatchSize <= 0 {
		cfg.Delivery.BatchSize = 25
	}
	if cfg.Delivery.DispatchTimeoutSeconds <= 0 {
		cfg.Delivery.DispatchTimeoutSeconds = 15
	}
	if cfg.Email.Mailbox == "" {
		cfg.Email.Mailbox = "INBOX"
	}
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.Scraping.IntervalHours) * time.Hour
}

func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.Scraping.SourceTimeoutSeconds) * time.Second
}

func (c Config) DispatchTimeout() time.Duration {
	return time.Duration(c.Delivery.DispatchTimeoutSeconds) * time.Second
}
