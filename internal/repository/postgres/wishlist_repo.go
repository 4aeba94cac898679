package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

type wishlistRepository struct {
	DB *sql.DB
}

func NewWishlistRepository(db *sql.DB) domain.WishlistRepository {
	return &wishlistRepository{DB: db}
}

func (r *wishlistRepository) Add(ctx context.Context, entry *domain.WishlistEntry) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO wishlists (event_id, user_id, created_at)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, insert, entry.EventID, entry.UserID, entry.CreatedAt).Scan(&entry.ID)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return domain.ErrConflict
			case isForeignKeyViolation(err), isInvalidID(err):
				return domain.ErrNotFound
			}
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE events SET wishlist_count = wishlist_count + 1 WHERE id = $1`, entry.EventID)
		return err
	})
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, eventID string) (bool, error) {
	var removed bool
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM wishlists WHERE user_id = $1 AND event_id = $2`, userID, eventID)
		if err != nil {
			return notFoundOr(err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil
		}
		removed = true
		_, err = tx.ExecContext(ctx, `UPDATE events SET wishlist_count = GREATEST(wishlist_count - 1, 0) WHERE id = $1`, eventID)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (r *wishlistRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.WishlistEntry, error) {
	query := `
		SELECT w.id, w.user_id, w.event_id, w.created_at, ` + eventColumns + `
		FROM wishlists w
		JOIN events e ON e.id = w.event_id
		JOIN users u ON u.id = e.organizer_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		if isInvalidID(err) {
			return []*domain.WishlistEntry{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.WishlistEntry, 0)
	for rows.Next() {
		w := &domain.WishlistEntry{}
		var es eventScan
		dest := append([]any{&w.ID, &w.UserID, &w.EventID, &w.CreatedAt}, es.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		w.Event = es.event()
		entries = append(entries, w)
	}
	return entries, rows.Err()
}

func (r *wishlistRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM wishlists WHERE user_id = $1 AND event_id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, eventID).Scan(&exists); err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}
