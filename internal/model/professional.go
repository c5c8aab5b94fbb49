package model

import (
	"time"

	"github.com/google/uuid"
)

type ProfessionalProfile struct {
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	BusinessName    *string   `db:"business_name" json:"business_name"`
	Bio             *string   `db:"bio" json:"bio"`
	YearsExperience *int      `db:"years_experience" json:"years_experience"`
	IsVerified      bool      `db:"is_verified" json:"is_verified"`
	RatingAvg       float64   `db:"rating_avg" json:"rating_avg"`
	ReviewsCount    int       `db:"reviews_count" json:"reviews_count"`
	BaseTravelFee   *float64  `db:"base_travel_fee" json:"base_travel_fee"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ServiceArea is a disc of coverage. A nil center never matches a location search.
type ServiceArea struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfessionalID uuid.UUID `db:"artisan_user_id" json:"-"`
	AreaName       *string   `db:"area_name" json:"area_name"`
	Lat            *float64  `db:"lat" json:"lat"`
	Lng            *float64  `db:"lng" json:"lng"`
	RadiusKm       int       `db:"radius_km" json:"radius_km"`
}

const DefaultAreaRadiusKm = 10

type UpdateProfileRequest struct {
	BusinessName    *string  `json:"business_name" binding:"omitempty,max=200"`
	Bio             *string  `json:"bio" binding:"omitempty,max=4000"`
	YearsExperience *int     `json:"years_experience" binding:"omitempty,min=0,max=80"`
	BaseTravelFee   *float64 `json:"base_travel_fee" binding:"omitempty,min=0"`
}

type ServiceAreaRequest struct {
	AreaName *string  `json:"area_name" binding:"omitempty,max=200"`
	Lat      *float64 `json:"lat" binding:"required,latitude"`
	Lng      *float64 `json:"lng" binding:"required,longitude"`
	RadiusKm *int     `json:"radius_km" binding:"omitempty,min=1,max=500"`
}

type UpdateServiceAreaRequest struct {
	AreaName *string  `json:"area_name" binding:"omitempty,max=200"`
	Lat      *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng      *float64 `json:"lng" binding:"omitempty,longitude"`
	RadiusKm *int     `json:"radius_km" binding:"omitempty,min=1,max=500"`
}

// ProfessionalSummary is one search result row.
type ProfessionalSummary struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url"`
	BusinessName *string   `db:"business_name" json:"business_name"`
	Bio          *string   `db:"bio" json:"bio"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	RatingAvg    float64   `db:"rating_avg" json:"rating_avg"`
	ReviewsCount int       `db:"reviews_count" json:"reviews_count"`
	DistanceKm   *float64  `db:"distance_km" json:"distance_km"`
	Lat          *float64  `db:"lat" json:"lat"`
	Lng          *float64  `db:"lng" json:"lng"`
	MinPrice     *float64  `db:"min_price" json:"min_price"`
}

// ProfessionalCard is the header of the detail view.
type ProfessionalCard struct {
	ID              uuid.UUID `db:"id" json:"id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	AvatarURL       *string   `db:"avatar_url" json:"avatar_url"`
	BusinessName    *string   `db:"business_name" json:"business_name"`
	Bio             *string   `db:"bio" json:"bio"`
	YearsExperience *int      `db:"years_experience" json:"years_experience"`
	IsVerified      bool      `db:"is_verified" json:"is_verified"`
	RatingAvg       float64   `db:"rating_avg" json:"rating_avg"`
	ReviewsCount    int       `db:"reviews_count" json:"reviews_count"`
	BaseTravelFee   *float64  `db:"base_travel_fee" json:"base_travel_fee"`
}

type ProfessionalDetail struct {
	Professional *ProfessionalCard `json:"artisan"`
	Services     []*ServiceListing `json:"services"`
	Reviews      []*ReviewListing  `json:"reviews"`
	ServiceAreas []*ServiceArea    `json:"service_areas"`
}
