package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

const reviewColumns = `id, booking_id, reviewer_user_id, reviewed_user_id, rating, comment, created_at, updated_at`

type reviewRepository struct {
	BaseRepository
}

func NewReviewRepository(db *sqlx.DB) repository.ReviewRepository {
	return &reviewRepository{NewBaseRepository(db)}
}

// Upsert keeps one review per booking; resubmitting overwrites rating and comment.
func (r *reviewRepository) Upsert(ctx context.Context, review *model.Review) (*model.Review, error) {
	query := `
		INSERT INTO reviews (booking_id, reviewer_user_id, reviewed_user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (booking_id) DO UPDATE
		SET rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			updated_at = NOW()
		RETURNING ` + reviewColumns

	var out model.Review
	err := r.get(ctx, &out, query,
		review.BookingID,
		review.ReviewerID,
		review.ReviewedID,
		review.Rating,
		review.Comment,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert review: %w", err)
	}
	return &out, nil
}

func (r *reviewRepository) Aggregate(ctx context.Context, reviewedID uuid.UUID) (model.RatingAggregate, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(AVG(rating), 0)::double precision AS avg
		FROM reviews
		WHERE reviewed_user_id = $1
	`
	var agg model.RatingAggregate
	if err := r.get(ctx, &agg, query, reviewedID); err != nil {
		return agg, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return agg, nil
}

func (r *reviewRepository) ListForProfessional(ctx context.Context, professionalID uuid.UUID, limit int) ([]*model.ReviewListing, error) {
	query := `
		SELECT r.id, r.rating, r.comment, r.created_at,
			u.first_name, u.last_name, u.avatar_url
		FROM reviews r
		JOIN users u ON u.id = r.reviewer_user_id
		WHERE r.reviewed_user_id = $1
		ORDER BY r.created_at DESC, r.id ASC
		LIMIT $2
	`
	reviews := []*model.ReviewListing{}
	if err := r.selectAll(ctx, &reviews, query, professionalID, limit); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
