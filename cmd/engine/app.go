package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"vagabot-engine/internal/config"
	"vagabot-engine/internal/dispatch"
	"vagabot-engine/internal/ledger"
	"vagabot-engine/internal/pipeline"
	"vagabot-engine/internal/secrets"
	"vagabot-engine/internal/source"
	"vagabot-engine/internal/source/email"
	"vagabot-engine/internal/source/gupy"
	"vagabot-engine/internal/source/indeed"
	"vagabot-engine/internal/source/linkedin"
	"vagabot-engine/internal/store"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg    config.Config
	db     *store.DB
	engine *pipeline.Engine
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func resolveDataDir() (string, error) {
	dir := dataDirFlag
	if dir == "" {
		dir = os.Getenv("VAGABOT_DATA_DIR")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

func loadConfig() (config.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return config.Config{}, err
	}

	cfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return config.Config{}, fmt.Errorf("config bootstrap: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load %s: %w", cfgPath, err)
	}
	cfg.App.DataDir = dataDir

	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		for _, e := range v.Errors {
			log.Printf("[config] error: %s", e)
		}
		return config.Config{}, fmt.Errorf("%s has %d problem(s)", cfgPath, len(v.Errors))
	}
	return cfg, nil
}

func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := store.Open(filepath.Join(cfg.App.DataDir, "vagabot.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	fetchers, err := buildFetchers(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	disp, err := dispatch.NewTelegram(cfg.Delivery.TelegramToken, cfg.Delivery.TelegramChatID)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	eng, err := pipeline.New(cfg, db, ledger.New(db.Pool), fetchers, disp)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &app{cfg: cfg, db: db, engine: eng}, nil
}

func buildFetchers(cfg config.Config) ([]source.Fetcher, error) {
	limiter := source.NewHostLimiter(1, 2)
	var fetchers []source.Fetcher

	if s := cfg.Scraping.Sources.Gupy; s.Enabled {
		fetchers = append(fetchers, gupy.New(gupy.Config{
			Keywords:   cfg.Scraping.Keywords,
			RemoteOnly: cfg.Filters.RemoteOnly,
			MaxPages:   s.MaxPages,
		}, limiter))
	}
	if s := cfg.Scraping.Sources.Indeed; s.Enabled {
		fetchers = append(fetchers, indeed.New(indeed.Config{
			Keywords:   cfg.Scraping.Keywords,
			MaxPages:   s.MaxPages,
			MaxDaysOld: cfg.Filters.MaxDaysOld,
		}, limiter))
	}
	if s := cfg.Scraping.Sources.LinkedIn; s.Enabled {
		fetchers = append(fetchers, linkedin.New(linkedin.Config{
			Keywords: cfg.Scraping.Keywords,
			MaxPages: s.MaxPages,
		}, limiter))
	}
	if cfg.Email.Enabled {
		account := secrets.IMAPAccount(cfg.Email.Username, cfg.Email.IMAPHost)
		pw, err := secrets.IMAPPassword(account)
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, email.New(email.Config{
			Host:       cfg.Email.IMAPHost,
			Port:       cfg.Email.IMAPPort,
			Username:   cfg.Email.Username,
			Password:   pw,
			Mailbox:    cfg.Email.Mailbox,
			SubjectAny: cfg.Email.SearchSubjectAny,
		}))
	}
	return fetchers, nil
}
