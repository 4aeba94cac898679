package domain

import (
	"context"
	"time"
)

// CategoryCount is the number of approved events in one category.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// MonthCount is the number of approved upcoming events in one calendar month (YYYY-MM, UTC).
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Dashboard summarizes the public catalog.
// swagger:model Dashboard
type Dashboard struct {
	Categories      []CategoryCount `json:"categories"`
	UpcomingByMonth []MonthCount    `json:"upcoming_by_month"`
}

// LeaderboardEntry ranks an attendee by participation points.
// swagger:model LeaderboardEntry
type LeaderboardEntry struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Points    int    `json:"points"`
}

// Points awarded per active registration and per review.
const (
	PointsPerRegistration = 10
	PointsPerReview       = 5
)

// StatsRepository runs the aggregate queries behind the stats endpoints.
type StatsRepository interface {
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	// UpcomingByMonth counts approved events dated at or after from, oldest month first.
	UpcomingByMonth(ctx context.Context, from time.Time, months int) ([]MonthCount, error)
	Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error)
	// Recommend returns approved upcoming events the user is not registered for, preferring
	// the categories of their active registrations. An empty userID ranks by popularity only.
	Recommend(ctx context.Context, userID string, from time.Time, limit int) ([]*Event, error)
}

// StatsService serves the home page aggregates.
type StatsService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error)
	Recommendations(ctx context.Context, userID string) ([]*Event, error)
}
