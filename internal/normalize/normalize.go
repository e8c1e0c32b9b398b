package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"vagabot-engine/internal/domain"
)

// ErrMalformedRecord flags a raw record missing a title or any derivable
// identity. The caller drops the record and continues; one bad card must
// never abort a batch.
var ErrMalformedRecord = errors.New("malformed record")

var remoteTerms = []string{"remoto", "remote", "home office", "trabalho a distancia", "100% remota"}

var rePJ = regexp.MustCompile(`\bp\.?j\.?\b`)

// Listing maps a raw portal record into the canonical shape.
//
// Identity prefers the canonical URL; portals whose URLs churn (LinkedIn
// search links, alert-email redirects) provide SourceKey instead and get
// "source:key". The choice is per record, so a source can mix both.
func Listing(raw domain.RawListing, src domain.Source, now time.Time) (domain.Listing, error) {
	title := CleanText(raw.Title)
	if title == "" {
		return domain.Listing{}, fmt.Errorf("%w: empty title (source=%s url=%q)", ErrMalformedRecord, src, raw.URL)
	}

	identity, canonURL := identityFor(raw, src)
	if identity == "" {
		return domain.Listing{}, fmt.Errorf("%w: no url or source key (source=%s title=%q)", ErrMalformedRecord, src, title)
	}

	return domain.Listing{
		Identity:     identity,
		URL:          canonURL,
		Title:        title,
		Company:      CleanText(raw.Company),
		Location:     CleanText(raw.Location),
		IsRemote:     isRemote(raw),
		ContractType: ContractType(raw.ContractType),
		PublishedAt:  ParseDate(raw.PostedText, now),
		Source:       src,
	}, nil
}

func identityFor(raw domain.RawListing, src domain.Source) (identity, canonURL string) {
	canonURL = CanonicalURL(raw.URL)
	key := CleanText(raw.SourceKey)
	if key != "" {
		return string(src) + ":" + key, canonURL
	}
	return canonURL, canonURL
}

func isRemote(raw domain.RawListing) bool {
	if raw.Remote {
		return true
	}
	blob := Fold(raw.Location + " " + raw.RemoteHint)
	for _, term := range remoteTerms {
		if strings.Contains(blob, term) {
			return true
		}
	}
	return false
}

// ContractType collapses the portals' free-text contract labels onto the
// handful of Brazilian contract kinds; anything unrecognized passes through
// cleaned.
func ContractType(s string) string {
	s = CleanText(s)
	folded := Fold(s)
	switch {
	case folded == "":
		return ""
	case strings.Contains(folded, "efetivo"):
		return "Efetivo"
	case strings.Contains(folded, "tempor"):
		return "Temporário"
	case strings.Contains(folded, "estag"):
		return "Estágio"
	case strings.Contains(folded, "aprendiz"):
		return "Aprendiz"
	case rePJ.MatchString(folded) || strings.Contains(folded, "pessoa juridica"):
		return "PJ"
	default:
		return s
	}
}
