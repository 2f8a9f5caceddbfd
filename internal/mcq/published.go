package mcq

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PublishedStore is the durable, authoritative store of published MCQs,
// keyed by the numeric id. Only the publish engine writes to it.
type PublishedStore interface {
	// Upsert inserts or overwrites the row for rec.MCQNum atomically.
	Upsert(ctx context.Context, rec PublishedMCQ) error
	// GetByID returns the published, latest row for mcqID or ErrNotFound.
	GetByID(ctx context.Context, mcqID string) (PublishedMCQ, error)
	// ListPage returns published rows ordered by most recently updated.
	ListPage(ctx context.Context, limit, offset int) ([]PublishedMCQ, error)
	// CountPublished returns the number of published rows.
	CountPublished(ctx context.Context) (int, error)
}

// SQLStore implements PublishedStore and Allocator over database/sql.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Upsert(ctx context.Context, rec PublishedMCQ) error {
	pj, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO mcq (mcq_num, mcq_id, status, is_latest, payload_json, commit_hash, published_batch, updated_at)
		VALUES ($1, $2, 'published', TRUE, $3, $4, $5, $6)
		ON CONFLICT (mcq_num) DO UPDATE SET
		  mcq_id = EXCLUDED.mcq_id,
		  status = 'published',
		  is_latest = TRUE,
		  payload_json = EXCLUDED.payload_json,
		  commit_hash = EXCLUDED.commit_hash,
		  published_batch = EXCLUDED.published_batch,
		  updated_at = EXCLUDED.updated_at`,
		rec.MCQNum, rec.MCQID, string(pj), rec.CommitHash, rec.PublishedBatch, time.Now().Unix())
	return err
}

func (s *SQLStore) GetByID(ctx context.Context, mcqID string) (PublishedMCQ, error) {
	row := s.db.QueryRowContext(ctx, `SELECT mcq_num, mcq_id, payload_json, commit_hash, published_batch, updated_at
		FROM mcq
		WHERE mcq_id=$1 AND status='published' AND is_latest=TRUE`, mcqID)
	return scanPublished(row)
}

func (s *SQLStore) ListPage(ctx context.Context, limit, offset int) ([]PublishedMCQ, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT mcq_num, mcq_id, payload_json, commit_hash, published_batch, updated_at
		FROM mcq
		WHERE status='published' AND is_latest=TRUE
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PublishedMCQ
	for rows.Next() {
		rec, err := scanPublished(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountPublished(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mcq WHERE status='published'`).Scan(&n)
	return n, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanPublished(r rowScanner) (PublishedMCQ, error) {
	var rec PublishedMCQ
	var pj string
	var ch, pb sql.NullString
	if err := r.Scan(&rec.MCQNum, &rec.MCQID, &pj, &ch, &pb, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PublishedMCQ{}, ErrNotFound
		}
		return PublishedMCQ{}, err
	}
	rec.CommitHash = ch.String
	rec.PublishedBatch = pb.String
	if err := json.Unmarshal([]byte(pj), &rec.Payload); err != nil {
		return PublishedMCQ{}, err
	}
	return rec, nil
}
