package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/hexwar/internal/persist"
)

// BatchInfo summarizes a stored batch without decoding its document.
type BatchInfo struct {
	Game         string `json:"game"`
	Count        int64  `json:"count"`
	Version      int    `json:"version"`
	Elements     int    `json:"elements"`
	Hash         string `json:"hash"`
	SubmissionID string `json:"submission_id"`
}

var codec = persist.JSONCodec{}

// PutBatch creates or updates the batch at (b.Game, b.Count).
// An existing row is replaced only when the document hash differs, so
// resubmitting an unchanged batch is a no-op.
func (s *Store) PutBatch(ctx context.Context, b persist.Batch) error {
	if b.Game == "" {
		return fmt.Errorf("put batch: empty game name")
	}
	if b.Count < 1 {
		return fmt.Errorf("put batch: count %d must be at least 1", b.Count)
	}

	doc, err := codec.Marshal(b)
	if err != nil {
		return fmt.Errorf("put batch: %w", err)
	}
	hash, err := b.Hash()
	if err != nil {
		return fmt.Errorf("put batch: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO batches (game, count, version, elements, document, hash, submission_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game, count) DO UPDATE SET
			version = excluded.version,
			elements = excluded.elements,
			document = excluded.document,
			hash = excluded.hash,
			submission_id = excluded.submission_id
		WHERE batches.hash != excluded.hash
	`,
		b.Game,
		b.Count,
		b.Version,
		len(b.Elements),
		string(doc),
		hash,
		s.ids.Generate(),
	)
	if err != nil {
		return fmt.Errorf("put batch %q/%d: %w", b.Game, b.Count, err)
	}
	return nil
}

// Batches returns the game's batches with count >= from, ordered by count.
func (s *Store) Batches(ctx context.Context, game string, from int64) ([]persist.Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM batches
		WHERE game = ? AND count >= ?
		ORDER BY count ASC
	`, game, from)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []persist.Batch{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b, err := codec.Unmarshal([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("decode stored batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// ReadBatch returns one batch. Returns ErrNotFound if it does not exist.
func (s *Store) ReadBatch(ctx context.Context, game string, count int64) (persist.Batch, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM batches WHERE game = ? AND count = ?
	`, game, count).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return persist.Batch{}, fmt.Errorf("batch %q/%d: %w", game, count, ErrNotFound)
	}
	if err != nil {
		return persist.Batch{}, fmt.Errorf("read batch %q/%d: %w", game, count, err)
	}
	b, err := codec.Unmarshal([]byte(doc))
	if err != nil {
		return persist.Batch{}, fmt.Errorf("decode stored batch: %w", err)
	}
	return b, nil
}

// ReadDocument returns the stored canonical JSON of one batch.
// Returns ErrNotFound if it does not exist.
func (s *Store) ReadDocument(ctx context.Context, game string, count int64) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM batches WHERE game = ? AND count = ?
	`, game, count).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %q/%d: %w", game, count, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read batch %q/%d: %w", game, count, err)
	}
	return []byte(doc), nil
}

// BatchInfos lists the game's batches ordered by count.
func (s *Store) BatchInfos(ctx context.Context, game string) ([]BatchInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game, count, version, elements, hash, submission_id
		FROM batches
		WHERE game = ?
		ORDER BY count ASC
	`, game)
	if err != nil {
		return nil, fmt.Errorf("query batch infos: %w", err)
	}
	defer rows.Close()

	infos := []BatchInfo{}
	for rows.Next() {
		var info BatchInfo
		if err := rows.Scan(&info.Game, &info.Count, &info.Version, &info.Elements, &info.Hash, &info.SubmissionID); err != nil {
			return nil, fmt.Errorf("scan batch info: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch infos: %w", err)
	}
	return infos, nil
}

// ListGames returns the names of all games with stored batches, sorted.
func (s *Store) ListGames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT game FROM batches
		ORDER BY game
	`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []string{}
	for rows.Next() {
		var game string
		if err := rows.Scan(&game); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

// LastCount returns the highest stored count for the game, or 0.
func (s *Store) LastCount(ctx context.Context, game string) (int64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(count) FROM batches WHERE game = ?
	`, game).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("last count: %w", err)
	}
	return last.Int64, nil
}
