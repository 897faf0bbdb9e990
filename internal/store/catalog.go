package store

import (
	"context"
	"encoding/json"

	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/errors"
	"github.com/modelscout/modelscout/pkg/logging"
)

// UpsertBatchSize is the number of records written per batch.
const UpsertBatchSize = 100

// UpsertCatalog writes merged records keyed by canonical id with
// whole-row replace semantics: later writes win entirely on conflict.
// Records are written in fixed-size batches; a failed batch is logged
// and skipped while the remaining batches continue. Returns the
// number of records upserted.
func (s *Store) UpsertCatalog(ctx context.Context, records []catalog.Record) (int, error) {
	upserted := 0
	for start := 0; start < len(records); start += UpsertBatchSize {
		end := min(start+UpsertBatchSize, len(records))
		batch := records[start:end]

		if err := s.upsertBatch(ctx, batch); err != nil {
			logging.Error().
				Err(err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Msg("Catalog batch upsert failed, continuing with remaining batches")
			continue
		}
		upserted += len(batch)
	}
	return upserted, nil
}

func (s *Store) upsertBatch(ctx context.Context, batch []catalog.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapStore("upsert", "catalog", "", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog (canonical_id, record_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (canonical_id) DO UPDATE SET
			record_json = excluded.record_json,
			updated_at = excluded.updated_at`)
	if err != nil {
		return errors.WrapStore("upsert", "catalog", "", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range batch {
		rec := &batch[i]
		payload, err := json.Marshal(rec)
		if err != nil {
			return errors.WrapStore("upsert", "catalog", rec.CanonicalID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.CanonicalID, string(payload),
			rec.UpdatedAt.UTC().Format(timeFormat)); err != nil {
			return errors.WrapStore("upsert", "catalog", rec.CanonicalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapStore("upsert", "catalog", "", err)
	}
	return nil
}

// Records returns all canonical catalog records ordered by canonical
// id.
func (s *Store) Records(ctx context.Context) ([]catalog.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT record_json FROM catalog ORDER BY canonical_id")
	if err != nil {
		return nil, errors.WrapStore("query", "catalog", "", err)
	}
	defer func() { _ = rows.Close() }()

	var records []catalog.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.WrapStore("query", "catalog", "", err)
		}
		var rec catalog.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, errors.WrapStore("query", "catalog", "", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CatalogCount returns the number of canonical records.
func (s *Store) CatalogCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM catalog").Scan(&n)
	return n, errors.WrapStore("query", "catalog", "", err)
}
