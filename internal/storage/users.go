package storage

import (
	"context"
	"fmt"
)

// EnsureUser records the user ID if it is not known yet. The identity layer
// calls this before any library write so foreign keys hold.
func (s *Store) EnsureUser(ctx context.Context, userID int64, username string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET username = COALESCE(excluded.username, users.username)`,
		userID, nullableString(username),
	); err != nil {
		return fmt.Errorf("ensuring user %d: %w", userID, err)
	}
	return nil
}
