package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Domain event types written to the outbox.
const (
	EventBookingCreated    = "booking.created"
	EventBookingAccepted   = "booking.accepted"
	EventBookingRejected   = "booking.rejected"
	EventBookingCompleted  = "booking.completed"
	EventBookingCancelled  = "booking.cancelled"
	EventPaymentIntent     = "payment.intent_created"
	EventPaymentSucceeded  = "payment.succeeded"
	EventPaymentFailed     = "payment.failed"
	EventReviewSubmitted   = "review.submitted"
	EventProfessionalAdded = "professional.enabled"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// BookingEvent is the payload of every booking.* event.
type BookingEvent struct {
	BookingID      uuid.UUID     `json:"booking_id"`
	CustomerID     uuid.UUID     `json:"client_user_id"`
	ProfessionalID uuid.UUID     `json:"artisan_user_id"`
	Status         BookingStatus `json:"status"`
	StartAt        time.Time     `json:"start_at"`
}

func NewBookingEvent(b *Booking) BookingEvent {
	return BookingEvent{
		BookingID:      b.ID,
		CustomerID:     b.CustomerID,
		ProfessionalID: b.ProfessionalID,
		Status:         b.Status,
		StartAt:        b.StartAt,
	}
}

type PaymentEvent struct {
	BookingID uuid.UUID     `json:"booking_id"`
	IntentID  string        `json:"payment_intent_id"`
	Status    PaymentStatus `json:"status"`
}

type ReviewEvent struct {
	ReviewID       uuid.UUID `json:"review_id"`
	BookingID      uuid.UUID `json:"booking_id"`
	ProfessionalID uuid.UUID `json:"artisan_user_id"`
	Rating         int       `json:"rating"`
}
