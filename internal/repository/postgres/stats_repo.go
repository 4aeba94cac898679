package postgres

import (
	"context"
	"database/sql"
	"time"

	"eventhub/internal/domain"
)

type statsRepository struct {
	DB *sql.DB
}

func NewStatsRepository(db *sql.DB) domain.StatsRepository {
	return &statsRepository{
		DB: db,
	}
}

func (r *statsRepository) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	query := `
		SELECT category, COUNT(*)
		FROM events
		WHERE status = 'approved'
		GROUP BY category
		ORDER BY COUNT(*) DESC, category ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]domain.CategoryCount, 0)
	for rows.Next() {
		var c domain.CategoryCount
		var category string
		if err := rows.Scan(&category, &c.Count); err != nil {
			return nil, err
		}
		c.Category = domain.Category(category)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *statsRepository) UpcomingByMonth(ctx context.Context, from time.Time, months int) ([]domain.MonthCount, error) {
	query := `
		SELECT to_char(date_trunc('month', date AT TIME ZONE 'UTC'), 'YYYY-MM') AS month, COUNT(*)
		FROM events
		WHERE status = 'approved' AND date >= $1
		GROUP BY month
		ORDER BY month ASC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, from, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]domain.MonthCount, 0)
	for rows.Next() {
		var m domain.MonthCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, err
		}
		counts = append(counts, m)
	}
	return counts, rows.Err()
}

// Leaderboard scores every user from their active registrations and reviews. Users without
// points are left out; ties break on name then id.
func (r *statsRepository) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	query := `
		SELECT id, name, avatar_url, points FROM (
			SELECT u.id, u.name, u.avatar_url,
				(SELECT COUNT(*) FROM registrations r WHERE r.user_id = u.id AND r.status = 'registered') * $1
				+ (SELECT COUNT(*) FROM reviews v WHERE v.user_id = u.id) * $2 AS points
			FROM users u
		) scored
		WHERE points > 0
		ORDER BY points DESC, name ASC, id ASC
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, domain.PointsPerRegistration, domain.PointsPerReview, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.LeaderboardEntry, 0)
	for rows.Next() {
		e := &domain.LeaderboardEntry{}
		if err := rows.Scan(&e.UserID, &e.Name, &e.AvatarURL, &e.Points); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Recommend ranks events in the caller's preferred categories first, then by seats taken and
// rating. NULLIF turns an anonymous caller into a NULL user so every user predicate is false.
func (r *statsRepository) Recommend(ctx context.Context, userID string, from time.Time, limit int) ([]*domain.Event, error) {
	query := `
		WITH preferred AS (
			SELECT DISTINCT ev.category
			FROM registrations rg
			JOIN events ev ON ev.id = rg.event_id
			WHERE rg.user_id = NULLIF($1, '')::uuid AND rg.status = 'registered'
		)
		SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON u.id = e.organizer_id
		WHERE e.status = 'approved' AND e.date >= $2
			AND NOT EXISTS (
				SELECT 1 FROM registrations rg
				WHERE rg.event_id = e.id AND rg.user_id = NULLIF($1, '')::uuid AND rg.status = 'registered'
			)
		ORDER BY (e.category IN (SELECT category FROM preferred)) DESC,
			e.registered_count DESC, e.average_rating DESC, e.date ASC, e.id ASC
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, from, limit)
	if err != nil {
		if isInvalidID(err) {
			return []*domain.Event{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
