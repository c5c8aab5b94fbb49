package model

import (
	"time"

	"github.com/google/uuid"
)

type ServiceCategory struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
	Slug string    `db:"slug" json:"slug"`
}

type PriceType string

const (
	PriceFixed        PriceType = "fixed"
	PriceStartingFrom PriceType = "starting_from"
	PriceHourly       PriceType = "hourly"
)

func (p PriceType) Valid() bool {
	switch p {
	case PriceFixed, PriceStartingFrom, PriceHourly:
		return true
	}
	return false
}

// Service is an offering in a professional's catalog.
type Service struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	ProfessionalID       uuid.UUID `db:"artisan_user_id" json:"artisan_user_id"`
	CategoryID           uuid.UUID `db:"category_id" json:"category_id"`
	Title                string    `db:"title" json:"title"`
	Description          *string   `db:"description" json:"description"`
	PriceType            PriceType `db:"price_type" json:"price_type"`
	PriceAmount          float64   `db:"price_amount" json:"price_amount"`
	DurationMinutes      *int      `db:"duration_minutes" json:"duration_minutes"`
	IsEmergencyAvailable bool      `db:"is_emergency_available" json:"is_emergency_available"`
	IsTravelIncluded     bool      `db:"is_travel_included" json:"is_travel_included"`
	IsActive             bool      `db:"is_active" json:"is_active"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// ServiceListing is a service joined with its category.
type ServiceListing struct {
	Service
	CategoryName string `db:"category_name" json:"category_name"`
	CategorySlug string `db:"category_slug" json:"category_slug"`
}

type CreateServiceRequest struct {
	CategorySlug         string    `json:"category_slug" binding:"required"`
	Title                string    `json:"title" binding:"required,max=200"`
	Description          *string   `json:"description" binding:"omitempty,max=4000"`
	PriceType            PriceType `json:"price_type" binding:"omitempty,price_type"`
	PriceAmount          *float64  `json:"price_amount" binding:"required,min=0"`
	DurationMinutes      *int      `json:"duration_minutes" binding:"omitempty,min=1"`
	IsEmergencyAvailable bool      `json:"is_emergency_available"`
	IsTravelIncluded     bool      `json:"is_travel_included"`
}

type UpdateServiceRequest struct {
	Title                *string    `json:"title" binding:"omitempty,max=200"`
	Description          *string    `json:"description" binding:"omitempty,max=4000"`
	PriceType            *PriceType `json:"price_type" binding:"omitempty,price_type"`
	PriceAmount          *float64   `json:"price_amount" binding:"omitempty,min=0"`
	DurationMinutes      *int       `json:"duration_minutes" binding:"omitempty,min=1"`
	IsEmergencyAvailable *bool      `json:"is_emergency_available"`
	IsTravelIncluded     *bool      `json:"is_travel_included"`
	IsActive             *bool      `json:"is_active"`
}
