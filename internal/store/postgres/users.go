package postgres

import (
	"context"
	"fmt"

	"github.com/appsquad/tooldir/internal/store"
)

// CreateUser inserts a user row and returns it with the generated fields.
func (s *Store) CreateUser(ctx context.Context, u store.User) (store.User, error) {
	query := `
		INSERT INTO users (url, username, email, picture)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := s.pool.QueryRow(ctx, query, u.URL, u.Username, u.Email, u.Picture).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return store.User{}, fmt.Errorf("insert user: %w", mapError(err))
	}
	return u, nil
}

const userColumns = `id, url, username, email, picture, confirmed, created_at`

func (s *Store) userBy(ctx context.Context, column string, value any) (store.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)
	var u store.User
	err := s.pool.QueryRow(ctx, query, value).
		Scan(&u.ID, &u.URL, &u.Username, &u.Email, &u.Picture, &u.Confirmed, &u.CreatedAt)
	if err != nil {
		return store.User{}, fmt.Errorf("select user by %s: %w", column, mapError(err))
	}
	return u, nil
}

// UserByID loads a user by primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (store.User, error) {
	return s.userBy(ctx, "id", id)
}

// UserByEmail loads a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (store.User, error) {
	return s.userBy(ctx, "email", email)
}

// UserByURL loads a user by handle.
func (s *Store) UserByURL(ctx context.Context, url string) (store.User, error) {
	return s.userBy(ctx, "url", url)
}

// ConfirmUser flips the confirmed flag for the user.
func (s *Store) ConfirmUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET confirmed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("confirm user: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListUserTools returns every tool associated with the user.
func (s *Store) ListUserTools(ctx context.Context, userID int64) ([]store.Tool, error) {
	query := `
		SELECT t.id, t.link, t.name, t.category, t.logo
		FROM tools t
		JOIN user_tools ut ON ut.tool_id = t.id
		WHERE ut.user_id = $1
		ORDER BY t.id
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user tools: %w", mapError(err))
	}
	defer rows.Close()

	var tools []store.Tool
	for rows.Next() {
		var t store.Tool
		if err := rows.Scan(&t.ID, &t.Link, &t.Name, &t.Category, &t.Logo); err != nil {
			return nil, fmt.Errorf("scan user tool: %w", err)
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user tools: %w", err)
	}
	return tools, nil
}

// AddUserTool associates a tool with a user. Re-adding an existing
// association is a no-op.
func (s *Store) AddUserTool(ctx context.Context, userID, toolID int64) error {
	query := `
		INSERT INTO user_tools (user_id, tool_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, tool_id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, query, userID, toolID); err != nil {
		return fmt.Errorf("add user tool: %w", mapError(err))
	}
	return nil
}

// RemoveUserTool detaches a tool from a user. Detaching an unassociated
// tool deletes zero rows and is treated as success.
func (s *Store) RemoveUserTool(ctx context.Context, userID, toolID int64) error {
	query := `DELETE FROM user_tools WHERE user_id = $1 AND tool_id = $2`
	if _, err := s.pool.Exec(ctx, query, userID, toolID); err != nil {
		return fmt.Errorf("remove user tool: %w", mapError(err))
	}
	return nil
}
