// Package ledger is the single source of truth for "has this listing
// already been sent". It backs onto the engine's sqlite database; every
// commit is its own transaction, so a crash can lose at most the listing
// currently in flight, never tear a record.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"vagabot-engine/internal/domain"
)

// ErrIO wraps any failure to read or write the backing store. Callers must
// treat it as fatal for the cycle: guessing delivery state risks duplicate
// sends.
var ErrIO = errors.New("ledger io failure")

type Ledger struct {
	db *sql.DB
}

func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Partition splits listings into not-yet-delivered and already-delivered.
// It never mutates ledger state; calling it twice in a row yields the same
// split. The fresh set comes back oldest publication first (undated rows
// last), ties broken by identity, so a re-run after a partial failure
// dispatches in the same order.
func (l *Ledger) Partition(ctx context.Context, listings []domain.Listing) (fresh, alreadySent []domain.Listing, err error) {
	delivered, err := l.deliveredSet(ctx)
	if err != nil {
		return nil, nil, err
	}

	for _, listing := range listings {
		if delivered.Contains(listing.Identity) {
			alreadySent = append(alreadySent, listing)
			continue
		}
		fresh = append(fresh, listing)
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		a, b := fresh[i], fresh[j]
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return a.Identity < b.Identity
		case a.PublishedAt == nil:
			return false
		case b.PublishedAt == nil:
			return true
		case a.PublishedAt.Equal(*b.PublishedAt):
			return a.Identity < b.Identity
		default:
			return a.PublishedAt.Before(*b.PublishedAt)
		}
	})

	return fresh, alreadySent, nil
}

// Commit records a confirmed delivery. Idempotent: re-committing an
// identity is a no-op. The write is flushed before Commit returns.
func (l *Ledger) Commit(ctx context.Context, rec domain.DeliveryRecord) error {
	if rec.Identity == "" {
		return fmt.Errorf("%w: empty identity", ErrIO)
	}
	_, err := l.db.ExecContext(ctx, `
INSERT OR IGNORE INTO deliveries (identity, delivered_at)
VALUES (?, ?);`,
		rec.Identity, rec.DeliveredAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: commit %s: %v", ErrIO, rec.Identity, err)
	}
	return nil
}

// Delivered reports whether an identity has a delivery record.
func (l *Ledger) Delivered(ctx context.Context, identity string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `SELECT 1 FROM deliveries WHERE identity = ? LIMIT 1;`, identity).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: lookup %s: %v", ErrIO, identity, err)
	default:
		return true, nil
	}
}

// Size returns the number of delivery records, for the cycle summary.
func (l *Ledger) Size(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrIO, err)
	}
	return n, nil
}

func (l *Ledger) deliveredSet(ctx context.Context) (mapset.Set[string], error) {
	rows, err := l.db.QueryContext(ctx, `SELECT identity FROM deliveries;`)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrIO, err)
	}
	defer rows.Close()

	set := mapset.NewThreadUnsafeSet[string]()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrIO, err)
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrIO, err)
	}
	return set, nil
}
