package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthsPT = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "marco": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June,
	"julho": time.July, "agosto": time.August, "setembro": time.September,
	"outubro": time.October, "novembro": time.November, "dezembro": time.December,
}

var (
	reISO       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	reSlash     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	reLongPT    = regexp.MustCompile(`\b(\d{1,2}) de ([a-z]+)(?: de (\d{4}))?\b`)
	reRelative  = regexp.MustCompile(`\bha (\d+) (minuto|hora|dia|semana|mes)e?s?\b`)
	reRelativeE = regexp.MustCompile(`\b(\d+)\+? (minute|hour|day|week|month)s? ago\b`)
)

// ParseDate turns the publication text a portal shows into a timestamp.
// Portals mix absolute pt-BR forms ("12 de março de 2026", "12/03/2026"),
// ISO dates, and relative forms ("há 2 dias", "3 days ago", "hoje").
// Text that parses to nothing returns nil; the caller must treat the age as
// unknown, never as "now".
func ParseDate(s string, now time.Time) *time.Time {
	folded := Fold(CleanText(s))
	if folded == "" || folded == "n/a" {
		return nil
	}

	switch folded {
	case "hoje", "today", "agora", "just posted", "recem publicada":
		t := now.Truncate(24 * time.Hour)
		return &t
	case "ontem", "yesterday":
		t := now.AddDate(0, 0, -1).Truncate(24 * time.Hour)
		return &t
	}

	if m := reRelative.FindStringSubmatch(folded); m != nil {
		return relativeDate(m[1], m[2], now)
	}
	if m := reRelativeE.FindStringSubmatch(folded); m != nil {
		return relativeDate(m[1], m[2], now)
	}

	if reISO.MatchString(folded) {
		if t, err := time.Parse("2006-01-02", folded[:10]); err == nil {
			return &t
		}
	}

	if m := reLongPT.FindStringSubmatch(folded); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthsPT[m[2]]
		if ok {
			year := now.Year()
			if m[3] != "" {
				year, _ = strconv.Atoi(m[3])
			}
			if t := validDate(year, month, day); t != nil {
				return t
			}
		}
	}

	if m := reSlash.FindStringSubmatch(folded); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		// portals here write DD/MM
		if t := validDate(year, time.Month(month), day); t != nil {
			return t
		}
	}

	return nil
}

func relativeDate(num, unit string, now time.Time) *time.Time {
	n, err := strconv.Atoi(num)
	if err != nil {
		return nil
	}
	var t time.Time
	switch {
	case strings.HasPrefix(unit, "minut") || strings.HasPrefix(unit, "minute"):
		t = now.Add(-time.Duration(n) * time.Minute)
	case strings.HasPrefix(unit, "hora") || strings.HasPrefix(unit, "hour"):
		t = now.Add(-time.Duration(n) * time.Hour)
	case strings.HasPrefix(unit, "dia") || strings.HasPrefix(unit, "day"):
		t = now.AddDate(0, 0, -n)
	case strings.HasPrefix(unit, "semana") || strings.HasPrefix(unit, "week"):
		t = now.AddDate(0, 0, -7*n)
	case strings.HasPrefix(unit, "mes") || strings.HasPrefix(unit, "month"):
		t = now.AddDate(0, -n, 0)
	default:
		return nil
	}
	return &t
}

func validDate(year int, month time.Month, day int) *time.Time {
	if month < time.January || month > time.December || day < 1 || day > 31 || year < 2000 {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return nil
	}
	return &t
}
