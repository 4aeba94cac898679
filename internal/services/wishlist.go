package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type wishlistService struct {
	wishlistRepo   domain.WishlistRepository
	contextTimeout time.Duration
}

func NewWishlistService(wishlistRepo domain.WishlistRepository, timeout time.Duration) domain.WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo, contextTimeout: timeout}
}

func (s *wishlistService) Add(ctx context.Context, userID, eventID string) (*domain.WishlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entry := &domain.WishlistEntry{UserID: userID, EventID: eventID, CreatedAt: time.Now().UTC()}
	if err := s.wishlistRepo.Add(ctx, entry); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, domain.ErrConflict):
			return nil, fmt.Errorf("event already in wishlist: %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("add to wishlist: %w", err)
	}
	return entry, nil
}

// Remove is idempotent: removing an absent entry succeeds and leaves the counter untouched.
func (s *wishlistService) Remove(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.wishlistRepo.Remove(ctx, userID, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

func (s *wishlistService) List(ctx context.Context, userID string) ([]*domain.WishlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, err := s.wishlistRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	if entries == nil {
		entries = []*domain.WishlistEntry{}
	}
	return entries, nil
}

func (s *wishlistService) Check(ctx context.Context, userID, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ok, err := s.wishlistRepo.Exists(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check wishlist: %w", err)
	}
	return ok, nil
}
