package config

import (
	"errors"
	"os"
	"path/filepath"
)

const defaultYAML = `app:
  data_dir: .

scraping:
  keywords: ["desenvolvedor", "analista de dados"]
  interval_hours: 1
  source_timeout_seconds: 120
  sources:
    gupy:
      enabled: true
      max_pages: 5
    indeed:
      enabled: true
      max_pages: 5
    linkedin:
      enabled: true
      max_pages: 3

filters:
  remote_only: true
  max_days_old: 3
  excluded_title_terms: ["senior", "sr"]
  whole_word_terms: true

delivery:
  batch_size: 25
  dispatch_timeout_seconds: 15
  send_status: true
  # telegram_token / telegram_chat_id come from .env:
  #   TELEGRAM_BOT_TOKEN=...
  #   TELEGRAM_CHAT_ID=...

email:
  enabled: false
  imap_host: imap.gmail.com
  imap_port: 993
  username: ""
  mailbox: INBOX
  search_subject_any: ["vagas", "job alert"]
`

// EnsureUserConfig writes the default config into the data dir on first
// run and returns the path either way.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.WriteFile(userPath, []byte(defaultYAML), 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
