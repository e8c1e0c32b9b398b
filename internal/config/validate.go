package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims list entries and checks the surface the
// pipeline depends on. Errors block startup; warnings are logged.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Scraping.Keywords = trimList(out.Scraping.Keywords)
	out.Filters.ExcludedTitleTerms = trimList(out.Filters.ExcludedTitleTerms)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)

	s := out.Scraping.Sources
	if !s.Gupy.Enabled && !s.Indeed.Enabled && !s.LinkedIn.Enabled && !out.Email.Enabled {
		res.addErr("no sources enabled: enable gupy, indeed, linkedin, or email")
	}
	if len(out.Scraping.Keywords) == 0 {
		res.addErr("scraping.keywords is empty")
	}

	if out.Delivery.TelegramToken == "" {
		res.addErr("delivery.telegram_token is required (yaml or TELEGRAM_BOT_TOKEN)")
	}
	if out.Delivery.TelegramChatID == 0 {
		res.addErr("delivery.telegram_chat_id is required (yaml or TELEGRAM_CHAT_ID)")
	}

	if out.Filters.MaxDaysOld < 0 {
		res.addErr("filters.max_days_old must be >= 0 (0 disables the age rule)")
	}
	if !out.Filters.RemoteOnly && out.Filters.MaxDaysOld == 0 && len(out.Filters.ExcludedTitleTerms) == 0 {
		res.addWarn("all filters disabled; every scraped listing will be delivered")
	}

	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; alert scanning may find nothing")
		}
	}

	return out, res
}
