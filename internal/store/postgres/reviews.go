package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/appsquad/tooldir/internal/store"
)

// CreateReview inserts a review row and returns it with generated fields.
func (s *Store) CreateReview(ctx context.Context, r store.AudioReview) (store.AudioReview, error) {
	query := `
		INSERT INTO audio_reviews (tool_id, user_id, audio)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := s.pool.QueryRow(ctx, query, r.ToolID, r.UserID, r.Audio).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return store.AudioReview{}, fmt.Errorf("insert review: %w", mapError(err))
	}
	return r, nil
}

// FindReview returns the first review matching the filter. The audio
// payload is only fetched when withAudio is set; it can be megabytes.
func (s *Store) FindReview(ctx context.Context, f store.ReviewFilter, withAudio bool) (store.AudioReview, error) {
	if f.Empty() {
		return store.AudioReview{}, fmt.Errorf("review filter is empty")
	}

	audioCol := "''::bytea"
	if withAudio {
		audioCol = "audio"
	}

	var (
		conds []string
		args  []any
	)
	addCond := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.ID != nil {
		addCond("id", *f.ID)
	}
	if f.ToolID != nil {
		addCond("tool_id", *f.ToolID)
	}
	if f.UserID != nil {
		addCond("user_id", *f.UserID)
	}

	query := fmt.Sprintf(`
		SELECT id, tool_id, user_id, %s, created_at, updated_at
		FROM audio_reviews
		WHERE %s
		ORDER BY id
		LIMIT 1
	`, audioCol, strings.Join(conds, " AND "))

	var r store.AudioReview
	err := s.pool.QueryRow(ctx, query, args...).
		Scan(&r.ID, &r.ToolID, &r.UserID, &r.Audio, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return store.AudioReview{}, fmt.Errorf("select review: %w", mapError(err))
	}
	if !withAudio {
		r.Audio = nil
	}
	return r, nil
}

// DeleteReview removes a review by id.
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM audio_reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
