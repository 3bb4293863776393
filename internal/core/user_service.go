package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Users returns the active users, ordered by username.
func (s *lookupService) Users(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, full_name, email, role, is_active
		FROM users
		WHERE is_active = true
		ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &u.IsActive)
	return u, err
}
