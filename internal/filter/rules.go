package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"vagabot-engine/internal/domain"
	"vagabot-engine/internal/normalize"
)

// RemoteRule drops listings not flagged remote.
type RemoteRule struct{}

func (RemoteRule) Name() string { return ruleRemote }

func (RemoteRule) Keep(l domain.Listing, _ time.Time) bool { return l.IsRemote }

// AgeRule drops listings published more than MaxDays before now. A listing
// without a publication date is kept: unknown age is not grounds for
// exclusion.
type AgeRule struct {
	MaxDays int
}

func (AgeRule) Name() string { return ruleAge }

func (r AgeRule) Keep(l domain.Listing, now time.Time) bool {
	if l.PublishedAt == nil {
		return true
	}
	return now.Sub(*l.PublishedAt) <= time.Duration(r.MaxDays)*24*time.Hour
}

// TitleRule drops listings whose title contains an excluded term,
// case- and accent-insensitively. In whole-word mode a term only matches on
// word boundaries, so "sr" does not hit "MSR" or "Israel".
type TitleRule struct {
	terms     []string
	wordExprs []*regexp.Regexp
}

func NewTitleRule(terms []string, wholeWord bool) (TitleRule, error) {
	r := TitleRule{}
	for _, t := range terms {
		folded := normalize.Fold(strings.TrimSpace(t))
		if folded == "" {
			continue
		}
		if !wholeWord {
			r.terms = append(r.terms, folded)
			continue
		}
		expr, err := regexp.Compile(`\b` + regexp.QuoteMeta(folded) + `\b`)
		if err != nil {
			return TitleRule{}, fmt.Errorf("filter: bad excluded term %q: %w", t, err)
		}
		r.wordExprs = append(r.wordExprs, expr)
	}
	return r, nil
}

func (TitleRule) Name() string { return ruleTitle }

func (r TitleRule) Keep(l domain.Listing, _ time.Time) bool {
	title := normalize.Fold(l.Title)
	for _, term := range r.terms {
		if strings.Contains(title, term) {
			return false
		}
	}
	for _, expr := range r.wordExprs {
		if expr.MatchString(title) {
			return false
		}
	}
	return true
}
