package library

import (
	"context"

	"github.com/hoanghai1803/booker/internal/models"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 50
)

// Stats summarizes the caller's whole library.
func (s *Service) Stats(ctx context.Context, who Identity) (*models.UserStats, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	st, err := s.store.GetUserStats(ctx, who.UserID)
	if err != nil {
		return nil, translate(err, "load stats", "")
	}
	return st, nil
}

// RecentActivity returns the caller's most recently changed entries.
func (s *Service) RecentActivity(ctx context.Context, who Identity, limit int) ([]models.Activity, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultActivityLimit
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}
	activity, err := s.store.GetRecentActivity(ctx, who.UserID, limit)
	if err != nil {
		return nil, translate(err, "load recent activity", "")
	}
	return activity, nil
}

// Dashboard combines stats, goal progress for year and recent activity.
func (s *Service) Dashboard(ctx context.Context, who Identity, year int) (*models.Dashboard, error) {
	st, err := s.Stats(ctx, who)
	if err != nil {
		return nil, err
	}
	progress, err := s.GetProgress(ctx, who, year)
	if err != nil {
		return nil, err
	}
	activity, err := s.RecentActivity(ctx, who, defaultActivityLimit)
	if err != nil {
		return nil, err
	}
	return &models.Dashboard{
		Stats:          *st,
		YearlyProgress: *progress,
		RecentActivity: activity,
	}, nil
}

// CurrentYear is the calendar year of the service clock.
func (s *Service) CurrentYear() int {
	return s.today().Year()
}
