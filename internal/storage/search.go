package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoanghai1803/booker/internal/models"
)

// SearchBooks returns books whose title or author contains query, compared
// case-insensitively after Unicode case folding. Results are ordered by title
// and truncated to limit.
func (s *Store) SearchBooks(ctx context.Context, query string, limit int) ([]models.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Book{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + escapeLike(fold(query)) + "%"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+`
		 FROM books b
		 WHERE b.title_fold LIKE ? ESCAPE '\' OR b.author_fold LIKE ? ESCAPE '\'
		 ORDER BY b.title, b.id
		 LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
