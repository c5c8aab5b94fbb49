package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BookingID  uuid.UUID `db:"booking_id" json:"booking_id"`
	ReviewerID uuid.UUID `db:"reviewer_user_id" json:"reviewer_user_id"`
	ReviewedID uuid.UUID `db:"reviewed_user_id" json:"reviewed_user_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ReviewListing is a review with the reviewer's public name.
type ReviewListing struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   *string   `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url"`
}

// RatingAggregate is the denormalised summary kept on a professional profile.
type RatingAggregate struct {
	Count int     `db:"count" json:"reviews_count"`
	Avg   float64 `db:"avg" json:"rating_avg"`
}

// SubmitReviewRequest leaves the rating range check to the review service.
type SubmitReviewRequest struct {
	BookingID string  `json:"booking_id" binding:"required,uuid"`
	Rating    *int    `json:"rating" binding:"required"`
	Comment   *string `json:"comment" binding:"omitempty,max=4000"`
}
