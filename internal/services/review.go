package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

const (
	minRating        = 1
	maxRating        = 5
	maxCommentLength = 2000
)

type reviewService struct {
	reviewRepo     domain.ReviewRepository
	contextTimeout time.Duration
}

func NewReviewService(reviewRepo domain.ReviewRepository, timeout time.Duration) domain.ReviewService {
	return &reviewService{reviewRepo: reviewRepo, contextTimeout: timeout}
}

// SubmitReview stores one review per user and event and recomputes the event average in the
// same transaction. A second review by the same user is ErrConflict and leaves the average alone.
func (s *reviewService) SubmitReview(ctx context.Context, userID, eventID string, rating int, comment string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comment = strings.TrimSpace(comment)
	var problems []string
	if rating < minRating || rating > maxRating {
		problems = append(problems, fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}
	switch {
	case comment == "":
		problems = append(problems, "comment is required")
	case len(comment) > maxCommentLength:
		problems = append(problems, fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	review := &domain.Review{
		EventID:   eventID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.reviewRepo.CreateAndRecompute(ctx, review); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, domain.ErrConflict):
			return nil, fmt.Errorf("event already reviewed: %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

func (s *reviewService) ListReviews(ctx context.Context, eventID string) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reviews, err := s.reviewRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return reviews, nil
}
