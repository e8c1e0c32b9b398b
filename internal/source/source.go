// Package source defines the contract every portal adapter implements.
// Adapters are plain producers of raw records; everything they emit goes
// through the normalizer before the pipeline touches it.
package source

import (
	"context"

	"vagabot-engine/internal/domain"
)

type Result struct {
	Source domain.Source
	Raw    []domain.RawListing

	// Finalize, when set, runs only after the cycle has safely recorded the
	// source's listings. The email adapter uses it to mark alert messages
	// seen, so a crashed cycle re-reads them next run.
	Finalize func(context.Context) error
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}
