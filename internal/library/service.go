// Package library is the tracking engine: it owns the rules for how a user's
// relationship to a book evolves (status, progress, rating, dates), records
// reading sessions, aggregates yearly goals, and reconciles the local catalog
// with the external book search provider.
//
// Every operation takes an explicit Identity; the package never reads
// ambient user state.
package library

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/openlibrary"
	"github.com/hoanghai1803/booker/internal/storage"
)

// DefaultBooksTarget is the yearly target given to lazily created goals.
const DefaultBooksTarget = 12

// Identity is the pre-authenticated caller of an operation.
type Identity struct {
	UserID   int64
	Username string
}

// ExternalCatalog is the book search provider consulted for broad searches
// and imports.
type ExternalCatalog interface {
	Search(ctx context.Context, query string, limit int) ([]openlibrary.SearchResult, error)
	GetDetails(ctx context.Context, key string) (*openlibrary.Details, error)
	LookupISBN(ctx context.Context, isbn string) (*openlibrary.Details, error)
}

// Service implements the library operations on top of a Store.
type Service struct {
	store              *storage.Store
	external           ExternalCatalog
	validate           *inputValidator
	now                func() time.Time
	defaultBooksTarget int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the source of "today" for date rules.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultBooksTarget sets the books target of lazily created goals.
func WithDefaultBooksTarget(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultBooksTarget = n
		}
	}
}

// NewService creates a Service backed by store and external.
func NewService(store *storage.Store, external ExternalCatalog, opts ...Option) *Service {
	s := &Service{
		store:              store,
		external:           external,
		validate:           newInputValidator(),
		now:                time.Now,
		defaultBooksTarget: DefaultBooksTarget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// today returns the current calendar date at midnight UTC.
func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EnsureUser records the caller so library rows can reference it.
func (s *Service) EnsureUser(ctx context.Context, who Identity) error {
	if err := checkIdentity(who); err != nil {
		return err
	}
	if err := s.store.EnsureUser(ctx, who.UserID, who.Username); err != nil {
		return apperr.Internal("failed to register user", err)
	}
	return nil
}

func checkIdentity(who Identity) error {
	if who.UserID <= 0 {
		return apperr.Validation("a user identity is required")
	}
	return nil
}

// translate maps storage errors onto apperr kinds. Errors that already carry
// a kind pass through unchanged.
func translate(err error, op, notFound string) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound("%s", notFound)
	case errors.Is(err, storage.ErrConflict):
		return apperr.Conflict("%s", conflictMessage(err))
	default:
		return apperr.Internal("failed to "+op, err)
	}
}

// conflictMessage strips the sentinel suffix from a storage conflict error.
func conflictMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+storage.ErrConflict.Error())
}
