package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/appsquad/tooldir/internal/store"
)

// CreateTool inserts a tool row. A concurrent insert for the same link
// wins the ON CONFLICT race; the loser gets store.ErrDuplicate and should
// re-read by link.
func (s *Store) CreateTool(ctx context.Context, t store.Tool) (store.Tool, error) {
	query := `
		INSERT INTO tools (link, name, category, logo)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (link) DO NOTHING
		RETURNING id
	`
	err := s.pool.QueryRow(ctx, query, t.Link, t.Name, t.Category, t.Logo).Scan(&t.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Tool{}, store.ErrDuplicate
	}
	if err != nil {
		return store.Tool{}, fmt.Errorf("insert tool: %w", mapError(err))
	}
	return t, nil
}

const toolColumns = `id, link, name, category, logo`

func (s *Store) toolBy(ctx context.Context, column string, value any) (store.Tool, error) {
	query := fmt.Sprintf(`SELECT %s FROM tools WHERE %s = $1`, toolColumns, column)
	var t store.Tool
	err := s.pool.QueryRow(ctx, query, value).
		Scan(&t.ID, &t.Link, &t.Name, &t.Category, &t.Logo)
	if err != nil {
		return store.Tool{}, fmt.Errorf("select tool by %s: %w", column, mapError(err))
	}
	return t, nil
}

// ToolByID loads a tool by primary key.
func (s *Store) ToolByID(ctx context.Context, id int64) (store.Tool, error) {
	return s.toolBy(ctx, "id", id)
}

// ToolByLink loads a tool by canonical domain.
func (s *Store) ToolByLink(ctx context.Context, link string) (store.Tool, error) {
	return s.toolBy(ctx, "link", link)
}
