package library

import (
	"context"
	"math"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/models"
)

// GoalInput sets the targets of a yearly goal. A books target of zero is
// stored as one.
type GoalInput struct {
	BooksTarget int  `json:"books_target" validate:"gte=0"`
	PagesTarget *int `json:"pages_target" validate:"omitempty,gt=0"`
}

// GetGoal returns the caller's goal for year, creating it with the default
// books target on first access.
func (s *Service) GetGoal(ctx context.Context, who Identity, year int) (*models.ReadingGoal, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	if err := checkYear(year); err != nil {
		return nil, err
	}
	g, err := s.store.GetOrCreateGoal(ctx, who.UserID, year, s.defaultBooksTarget)
	if err != nil {
		return nil, translate(err, "load goal", "goal not found")
	}
	return g, nil
}

// GetProgress returns the caller's targets for year next to the books and
// pages completed in it. Counts are recomputed from library entries on
// every call.
func (s *Service) GetProgress(ctx context.Context, who Identity, year int) (*models.GoalProgress, error) {
	g, err := s.GetGoal(ctx, who, year)
	if err != nil {
		return nil, err
	}
	books, pages, err := s.store.CompletedInYear(ctx, who.UserID, year)
	if err != nil {
		return nil, translate(err, "compute goal progress", "")
	}
	return goalProgress(g, books, pages), nil
}

// SetGoal creates or overwrites the caller's targets for year.
func (s *Service) SetGoal(ctx context.Context, who Identity, year int, in GoalInput) (*models.ReadingGoal, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	if err := checkYear(year); err != nil {
		return nil, err
	}
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	target := max(in.BooksTarget, 1)
	g, err := s.store.SetGoal(ctx, who.UserID, year, target, in.PagesTarget)
	if err != nil {
		return nil, translate(err, "save goal", "")
	}
	return g, nil
}

func checkYear(year int) error {
	if year < 1 || year > 9999 {
		return apperr.Validation("year %d is out of range", year)
	}
	return nil
}

func goalProgress(g *models.ReadingGoal, books, pages int) *models.GoalProgress {
	p := &models.GoalProgress{
		Year:           g.Year,
		BooksTarget:    g.BooksTarget,
		BooksCompleted: books,
		PagesTarget:    g.PagesTarget,
		PagesCompleted: pages,
		BooksPercent:   percentOf(books, g.BooksTarget),
	}
	if g.PagesTarget != nil {
		pp := percentOf(pages, *g.PagesTarget)
		p.PagesPercent = &pp
	}
	return p
}

// percentOf returns done/target as a whole percentage capped at 100. Targets
// below one count as one.
func percentOf(done, target int) int {
	ratio := math.Min(float64(done)/float64(max(target, 1)), 1)
	return int(math.Round(ratio * 100))
}
