package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

const profileColumns = `user_id, business_name, bio, years_experience, is_verified,
	rating_avg, reviews_count, base_travel_fee, created_at, updated_at`

type professionalRepository struct {
	BaseRepository
}

func NewProfessionalRepository(db *sqlx.DB) repository.ProfessionalRepository {
	return &professionalRepository{NewBaseRepository(db)}
}

func (r *professionalRepository) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	query := `INSERT INTO artisan_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to ensure professional profile: %w", err)
	}
	return nil
}

func (r *professionalRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.ProfessionalProfile, error) {
	query := `
		UPDATE artisan_profiles
		SET business_name = COALESCE($2, business_name),
			bio = COALESCE($3, bio),
			years_experience = COALESCE($4, years_experience),
			base_travel_fee = COALESCE($5, base_travel_fee),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns

	var p model.ProfessionalProfile
	err := r.get(ctx, &p, query, userID, req.BusinessName, req.Bio, req.YearsExperience, req.BaseTravelFee)
	if err != nil {
		return nil, fmt.Errorf("failed to update professional profile: %w", err)
	}
	return &p, nil
}

func (r *professionalRepository) GetCard(ctx context.Context, userID uuid.UUID) (*model.ProfessionalCard, error) {
	query := `
		SELECT
			u.id,
			u.first_name,
			u.last_name,
			u.avatar_url,
			ap.business_name,
			ap.bio,
			ap.years_experience,
			ap.is_verified,
			ap.rating_avg,
			ap.reviews_count,
			ap.base_travel_fee
		FROM users u
		JOIN artisan_profiles ap ON ap.user_id = u.id
		WHERE u.id = $1 AND ` + professionalRoles

	var card model.ProfessionalCard
	if err := r.get(ctx, &card, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return &card, nil
}

func (r *professionalRepository) SetRatingAggregate(ctx context.Context, userID uuid.UUID, agg model.RatingAggregate) error {
	query := `
		UPDATE artisan_profiles
		SET rating_avg = $2, reviews_count = $3, updated_at = NOW()
		WHERE user_id = $1
	`
	res, err := r.exec(ctx, query, userID, agg.Avg, agg.Count)
	if err != nil {
		return fmt.Errorf("failed to update rating aggregate: %w", err)
	}
	return expectOne(res)
}
