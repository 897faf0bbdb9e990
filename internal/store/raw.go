package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/errors"
)

// SaveListing upserts the raw snapshot for one listing, keyed by
// (canonical id, source, source-local id). Re-saving the same tuple
// overwrites the prior snapshot. Callers log and skip failures so one
// bad row never aborts a batch.
func (s *Store) SaveListing(ctx context.Context, l *catalog.Listing) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return errors.WrapStore("save", "raw_listings", l.CanonicalID, err)
	}

	err = s.execWithRetry(ctx, `
		INSERT INTO raw_listings (canonical_id, source, model_id, listing_json, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (canonical_id, source, model_id) DO UPDATE SET
			listing_json = excluded.listing_json,
			fetched_at = excluded.fetched_at`,
		l.CanonicalID, string(l.Source), l.ModelID, string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return errors.WrapStore("save", "raw_listings", l.CanonicalID, err)
}

// RawListings returns the stored snapshots for one source, most
// recently fetched first.
func (s *Store) RawListings(ctx context.Context, source catalog.Source) ([]catalog.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT listing_json FROM raw_listings
		WHERE source = ? ORDER BY fetched_at DESC, canonical_id`,
		string(source))
	if err != nil {
		return nil, errors.WrapStore("query", "raw_listings", string(source), err)
	}
	defer func() { _ = rows.Close() }()

	var listings []catalog.Listing
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.WrapStore("query", "raw_listings", string(source), err)
		}
		var l catalog.Listing
		if err := json.Unmarshal([]byte(payload), &l); err != nil {
			return nil, errors.WrapStore("query", "raw_listings", string(source), err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// RawCount returns the number of stored raw snapshots.
func (s *Store) RawCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM raw_listings").Scan(&n)
	return n, errors.WrapStore("query", "raw_listings", "", err)
}
