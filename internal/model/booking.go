package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingDisputed  BookingStatus = "disputed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingCancelled, BookingCompleted, BookingDisputed:
		return true
	}
	return false
}

// BookingAction is a lifecycle operation and the party allowed to perform it.
type BookingAction string

const (
	ActionAccept   BookingAction = "accept"
	ActionReject   BookingAction = "reject"
	ActionComplete BookingAction = "complete"
	ActionCancel   BookingAction = "cancel"
)

type transition struct {
	from []BookingStatus
	to   BookingStatus
}

// cancel is allowed from every status except completed.
var transitions = map[BookingAction]transition{
	ActionAccept:   {from: []BookingStatus{BookingPending}, to: BookingAccepted},
	ActionReject:   {from: []BookingStatus{BookingPending}, to: BookingCancelled},
	ActionComplete: {from: []BookingStatus{BookingAccepted}, to: BookingCompleted},
	ActionCancel: {
		from: []BookingStatus{BookingPending, BookingAccepted, BookingCancelled, BookingDisputed},
		to:   BookingCancelled,
	},
}

// AllowedFrom lists the statuses an action may start from.
func (a BookingAction) AllowedFrom() []BookingStatus {
	return transitions[a].from
}

// Target is the status an action produces.
func (a BookingAction) Target() BookingStatus {
	return transitions[a].to
}

// CanApply reports whether the action is legal from status s.
func (a BookingAction) CanApply(s BookingStatus) bool {
	for _, from := range transitions[a].from {
		if from == s {
			return true
		}
	}
	return false
}

// ByProfessional reports whether the professional (not the customer) performs the action.
func (a BookingAction) ByProfessional() bool {
	return a != ActionCancel
}

type Booking struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	CustomerID     uuid.UUID     `db:"client_user_id" json:"client_user_id"`
	ProfessionalID uuid.UUID     `db:"artisan_user_id" json:"artisan_user_id"`
	ServiceID      uuid.UUID     `db:"service_id" json:"service_id"`
	AddressID      uuid.UUID     `db:"address_id" json:"address_id"`
	StartAt        time.Time     `db:"start_at" json:"start_at"`
	EndAt          *time.Time    `db:"end_at" json:"end_at"`
	Status         BookingStatus `db:"status" json:"status"`
	ClientNote     *string       `db:"client_note" json:"client_note"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// IsParty reports whether userID is the customer or the professional.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return b.CustomerID == userID || b.ProfessionalID == userID
}

// BookingListing is a booking joined with the service title and the other
// party's name.
type BookingListing struct {
	Booking
	ServiceTitle     string `db:"service_title" json:"service_title"`
	CounterpartFirst string `db:"counterpart_first_name" json:"counterpart_first_name"`
	CounterpartLast  string `db:"counterpart_last_name" json:"counterpart_last_name"`
}

type Address struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Label      *string   `db:"label" json:"label"`
	Line1      *string   `db:"address_line1" json:"address_line1"`
	Line2      *string   `db:"address_line2" json:"address_line2"`
	City       *string   `db:"city" json:"city"`
	PostalCode *string   `db:"postal_code" json:"postal_code"`
	Country    string    `db:"country" json:"country"`
	Lat        *float64  `db:"lat" json:"lat"`
	Lng        *float64  `db:"lng" json:"lng"`
}

const DefaultCountry = "FR"

// AddressInput is free-form; a location is stored only when both
// coordinates are present.
type AddressInput struct {
	Label      *string  `json:"label" binding:"omitempty,max=100"`
	Line1      *string  `json:"address_line1" binding:"omitempty,max=255"`
	Line2      *string  `json:"address_line2" binding:"omitempty,max=255"`
	City       *string  `json:"city" binding:"omitempty,max=120"`
	PostalCode *string  `json:"postal_code" binding:"omitempty,max=20"`
	Country    *string  `json:"country" binding:"omitempty,len=2"`
	Lat        *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng        *float64 `json:"lng" binding:"omitempty,longitude"`
}

type CreateBookingRequest struct {
	ServiceID  string       `json:"service_id" binding:"required,uuid"`
	StartAt    string       `json:"start_at" binding:"required"`
	EndAt      *string      `json:"end_at"`
	Address    AddressInput `json:"address"`
	ClientNote *string      `json:"client_note" binding:"omitempty,max=2000"`
}

// BookingFilter narrows list queries; zero value lists everything.
type BookingFilter struct {
	Status *BookingStatus
}
