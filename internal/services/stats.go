package services

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

const (
	dashboardMonths      = 12
	leaderboardSize      = 10
	recommendationsLimit = 6
)

type statsService struct {
	statsRepo      domain.StatsRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewStatsService(statsRepo domain.StatsRepository, timeout time.Duration) domain.StatsService {
	return &statsService{
		statsRepo:      statsRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// Dashboard counts approved events per category and approved upcoming events per month for
// the next dashboardMonths months that have any.
func (s *statsService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	categories, err := s.statsRepo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	months, err := s.statsRepo.UpcomingByMonth(ctx, s.now().UTC(), dashboardMonths)
	if err != nil {
		return nil, fmt.Errorf("count upcoming by month: %w", err)
	}
	if categories == nil {
		categories = []domain.CategoryCount{}
	}
	if months == nil {
		months = []domain.MonthCount{}
	}
	return &domain.Dashboard{Categories: categories, UpcomingByMonth: months}, nil
}

func (s *statsService) Leaderboard(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, err := s.statsRepo.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if entries == nil {
		entries = []*domain.LeaderboardEntry{}
	}
	return entries, nil
}

// Recommendations suggests upcoming approved events. userID may be empty for anonymous callers.
func (s *statsService) Recommendations(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.statsRepo.Recommend(ctx, userID, s.now().UTC(), recommendationsLimit)
	if err != nil {
		return nil, fmt.Errorf("recommend events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
