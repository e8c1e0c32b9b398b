// Package email turns LinkedIn job-alert emails into listings. Messages are
// fetched with BODY.PEEK and only marked \Seen by Finalize, so a crashed
// cycle leaves them unread for the next run.
package email

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/emersion/go-imap/v2"

	"vagabot-engine/internal/domain"
	"vagabot-engine/internal/source"
)

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Mailbox     string
	SubjectAny  []string
	MaxMessages int
}

type Fetcher struct {
	cfg Config
}

func New(cfg Config) *Fetcher {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	return &Fetcher{cfg: cfg}
}

func (f *Fetcher) Name() string { return string(domain.SourceEmail) }

func (f *Fetcher) addr() string {
	return fmt.Sprintf("%s:%d", f.cfg.Host, f.cfg.Port)
}

func (f *Fetcher) Fetch(ctx context.Context) (source.Result, error) {
	c, err := dialAndLogin(ctx, f.addr(), f.cfg.Username, f.cfg.Password)
	if err != nil {
		return source.Result{}, err
	}
	defer logoutAndClose(c)

	if _, err := c.Select(f.cfg.Mailbox, nil).Wait(); err != nil {
		return source.Result{}, fmt.Errorf("imap select %s: %w", f.cfg.Mailbox, err)
	}

	msgs, err := fetchUnseen(ctx, c, f.cfg.MaxMessages)
	if err != nil {
		return source.Result{}, err
	}

	var raws []domain.RawListing
	var consumed []imap.UID
	for _, m := range msgs {
		if !subjectMatches(m.Subject, f.cfg.SubjectAny) {
			continue
		}
		body := htmlPart(m.RawMessage)
		if body == "" {
			continue
		}
		cards, err := parseAlertHTML(body)
		if err != nil {
			log.Printf("[email] parse alert %q: %v", m.Subject, err)
			continue
		}
		raws = append(raws, cards...)
		consumed = append(consumed, m.UID)
	}

	res := source.Result{
		// Alert cards are LinkedIn postings; keying them as such lets the
		// guest search adapter and the alerts collapse to one identity.
		Source: domain.SourceLinkedIn,
		Raw:    raws,
	}
	if len(consumed) > 0 {
		res.Finalize = func(ctx context.Context) error {
			return f.markConsumed(ctx, consumed)
		}
	}
	return res, nil
}

// markConsumed opens a fresh session so the flag update does not depend on
// the fetch connection surviving the whole cycle.
func (f *Fetcher) markConsumed(ctx context.Context, uids []imap.UID) error {
	c, err := dialAndLogin(ctx, f.addr(), f.cfg.Username, f.cfg.Password)
	if err != nil {
		return err
	}
	defer logoutAndClose(c)

	if _, err := c.Select(f.cfg.Mailbox, nil).Wait(); err != nil {
		return fmt.Errorf("imap select %s: %w", f.cfg.Mailbox, err)
	}
	return markSeen(c, uids)
}

func subjectMatches(subject string, any []string) bool {
	if len(any) == 0 {
		return true
	}
	s := strings.ToLower(subject)
	for _, want := range any {
		if strings.Contains(s, strings.ToLower(want)) {
			return true
		}
	}
	return false
}
