package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringService groups this app's secrets in the OS keychain.
const keyringService = "vagabot"

// IMAPAccount is the keychain account name for an IMAP login.
func IMAPAccount(username, host string) string {
	return fmt.Sprintf("imap:%s@%s", username, host)
}

// IMAPPassword looks up the password for an IMAP account: the VAGABOT_IMAP_PASSWORD
// environment variable wins, then the OS keychain.
func IMAPPassword(account string) (string, error) {
	if pw := strings.TrimSpace(os.Getenv("VAGABOT_IMAP_PASSWORD")); pw != "" {
		return pw, nil
	}
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	pw, err := keyring.Get(keyringService, account)
	if err != nil {
		return "", fmt.Errorf("imap password not in keychain (run set-password or export VAGABOT_IMAP_PASSWORD): %w", err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("stored imap password is empty")
	}
	return pw, nil
}

func SetIMAPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(keyringService, account, password)
}

func DeleteIMAPPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(keyringService, account)
}
