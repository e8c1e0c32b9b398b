package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vagabot-engine/internal/domain"
)

// SaveSnapshot upserts the consolidated listing set for the cycle. Existing
// rows keep their first_seen; the snapshot is append-friendly, not a wipe.
func SaveSnapshot(ctx context.Context, db *sql.DB, listings []domain.Listing, now time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO listings (identity, url, title, company, location, is_remote, contract_type, published_at, source, first_seen)
VALUES (?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(identity) DO UPDATE SET
  title = excluded.title,
  company = excluded.company,
  location = excluded.location,
  is_remote = excluded.is_remote,
  contract_type = excluded.contract_type,
  published_at = COALESCE(excluded.published_at, listings.published_at);
`)
	if err != nil {
		return fmt.Errorf("snapshot prepare: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		var published any
		if l.PublishedAt != nil {
			published = l.PublishedAt.UTC().Format(time.RFC3339)
		}
		remote := 0
		if l.IsRemote {
			remote = 1
		}
		if _, err := stmt.ExecContext(ctx,
			l.Identity, l.URL, l.Title, l.Company, l.Location,
			remote, l.ContractType, published, string(l.Source),
			now.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("snapshot insert %s: %w", l.Identity, err)
		}
	}

	return tx.Commit()
}

// CleanupOldListings drops snapshot rows not seen for three months.
func CleanupOldListings(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM listings
WHERE first_seen < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old listings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
