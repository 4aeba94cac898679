package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

type reviewRepository struct {
	DB *sql.DB
}

func NewReviewRepository(db *sql.DB) domain.ReviewRepository {
	return &reviewRepository{DB: db}
}

// CreateAndRecompute locks the event row before inserting so concurrent reviews of the same
// event recompute the average one after another, each seeing the previous commit.
func (r *reviewRepository) CreateAndRecompute(ctx context.Context, review *domain.Review) (float64, error) {
	var avg float64
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var id string
		if err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, review.EventID).Scan(&id); err != nil {
			return notFoundOr(err)
		}

		insert := `
			INSERT INTO reviews (event_id, user_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, insert, review.EventID, review.UserID, review.Rating, review.Comment, review.CreatedAt).
			Scan(&review.ID)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return domain.ErrConflict
			case isForeignKeyViolation(err), isInvalidID(err):
				return domain.ErrNotFound
			}
			return err
		}

		recompute := `
			UPDATE events
			SET average_rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE event_id = $1)
			WHERE id = $1
			RETURNING average_rating
		`
		return tx.QueryRowContext(ctx, recompute, review.EventID).Scan(&avg)
	})
	if err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *reviewRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Review, error) {
	query := `
		SELECT rv.id, rv.event_id, rv.user_id, u.name, rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.event_id = $1
		ORDER BY rv.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		if isInvalidID(err) {
			return []*domain.Review{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		rv := &domain.Review{}
		if err := rows.Scan(&rv.ID, &rv.EventID, &rv.UserID, &rv.ReviewerName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
