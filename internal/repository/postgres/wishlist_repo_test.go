package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestWishlistRepository_Add(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("inserts and increments", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO wishlists`).
			WithArgs("ev-1", "user-1", now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w-1"))
		mock.ExpectExec(`UPDATE events SET wishlist_count = wishlist_count \+ 1 WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entry := &domain.WishlistEntry{UserID: "user-1", EventID: "ev-1", CreatedAt: now}
		require.NoError(t, NewWishlistRepository(db).Add(ctx, entry))
		require.Equal(t, "w-1", entry.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate leaves the counter alone", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO wishlists`).WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err = NewWishlistRepository(db).Add(ctx, &domain.WishlistEntry{UserID: "user-1", EventID: "ev-1", CreatedAt: now})
		require.ErrorIs(t, err, domain.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWishlistRepository_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("present entry decrements with a floor", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM wishlists WHERE user_id = \$1 AND event_id = \$2`).
			WithArgs("user-1", "ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`GREATEST\(wishlist_count - 1, 0\)`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		removed, err := NewWishlistRepository(db).Remove(ctx, "user-1", "ev-1")
		require.NoError(t, err)
		require.True(t, removed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent entry is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM wishlists`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		removed, err := NewWishlistRepository(db).Remove(ctx, "user-1", "ev-1")
		require.NoError(t, err)
		require.False(t, removed)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWishlistRepository_Exists(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", "ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewWishlistRepository(db).Exists(ctx, "user-1", "ev-1")
	require.NoError(t, err)
	require.True(t, ok)
}
