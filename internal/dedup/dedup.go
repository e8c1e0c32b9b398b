// Package dedup collapses listings that share an identity, keeping the
// first occurrence and backfilling its missing fields from later duplicates.
package dedup

import (
	mapset "github.com/deckarep/golang-set/v2"

	"vagabot-engine/internal/domain"
)

// Listings removes duplicate identities, order-preserving (first wins).
// A later duplicate never replaces a field the kept record already has; it
// only fills fields the kept record is missing. Running the result through
// Listings again is a no-op.
func Listings(in []domain.Listing) []domain.Listing {
	seen := mapset.NewThreadUnsafeSet[string]()
	index := make(map[string]int, len(in))
	out := make([]domain.Listing, 0, len(in))

	for _, l := range in {
		if l.Identity == "" {
			continue
		}
		if seen.Contains(l.Identity) {
			merge(&out[index[l.Identity]], l)
			continue
		}
		seen.Add(l.Identity)
		index[l.Identity] = len(out)
		out = append(out, l)
	}
	return out
}

func merge(kept *domain.Listing, dup domain.Listing) {
	if kept.Title == "" {
		kept.Title = dup.Title
	}
	if kept.Company == "" {
		kept.Company = dup.Company
	}
	if kept.Location == "" {
		kept.Location = dup.Location
	}
	if kept.ContractType == "" {
		kept.ContractType = dup.ContractType
	}
	if kept.URL == "" {
		kept.URL = dup.URL
	}
	if kept.PublishedAt == nil && dup.PublishedAt != nil {
		t := *dup.PublishedAt
		kept.PublishedAt = &t
	}
	// any copy of the posting flagged remote marks the job remote
	kept.IsRemote = kept.IsRemote || dup.IsRemote
}
