// Package filter applies the configured business rules to a deduplicated
// listing set. Rules only remove; none of them mutates a listing.
package filter

import (
	"fmt"
	"time"

	"vagabot-engine/internal/domain"
)

// Rule decides whether a listing stays in the set.
type Rule interface {
	Name() string
	Keep(l domain.Listing, now time.Time) bool
}

// Removal reports what one rule dropped, for the cycle audit trail.
type Removal struct {
	Rule       string
	Count      int
	Identities []string
}

// Config is the rule surface the pipeline consumes.
type Config struct {
	RemoteOnly         bool     `yaml:"remote_only"`
	MaxDaysOld         int      `yaml:"max_days_old"` // <= 0 disables the age rule
	ExcludedTitleTerms []string `yaml:"excluded_title_terms"`
	WholeWordTerms     bool     `yaml:"whole_word_terms"`
	Order              []string `yaml:"order"` // empty means remote, age, title
}

const (
	ruleRemote = "remote"
	ruleAge    = "age"
	ruleTitle  = "title"
)

var defaultOrder = []string{ruleRemote, ruleAge, ruleTitle}

// Chain builds the enabled rules in the configured order. A rule whose
// config disables it is skipped even when named in the order list.
func Chain(cfg Config) ([]Rule, error) {
	order := cfg.Order
	if len(order) == 0 {
		order = defaultOrder
	}

	var rules []Rule
	for _, name := range order {
		switch name {
		case ruleRemote:
			if cfg.RemoteOnly {
				rules = append(rules, RemoteRule{})
			}
		case ruleAge:
			if cfg.MaxDaysOld > 0 {
				rules = append(rules, AgeRule{MaxDays: cfg.MaxDaysOld})
			}
		case ruleTitle:
			if len(cfg.ExcludedTitleTerms) > 0 {
				r, err := NewTitleRule(cfg.ExcludedTitleTerms, cfg.WholeWordTerms)
				if err != nil {
					return nil, err
				}
				rules = append(rules, r)
			}
		default:
			return nil, fmt.Errorf("filter: unknown rule %q", name)
		}
	}
	return rules, nil
}

// Apply runs the rules in order and reports removals per rule, including
// rules that removed nothing so the audit trail always has one entry per
// active rule.
func Apply(in []domain.Listing, rules []Rule, now time.Time) ([]domain.Listing, []Removal) {
	kept := in
	removals := make([]Removal, 0, len(rules))

	for _, r := range rules {
		rem := Removal{Rule: r.Name()}
		next := kept[:0:0]
		for _, l := range kept {
			if r.Keep(l, now) {
				next = append(next, l)
				continue
			}
			rem.Count++
			rem.Identities = append(rem.Identities, l.Identity)
		}
		kept = next
		removals = append(removals, rem)
	}
	return kept, removals
}
