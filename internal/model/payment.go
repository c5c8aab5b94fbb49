package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentRequiresPayment PaymentStatus = "requires_payment"
	PaymentSucceeded       PaymentStatus = "succeeded"
	PaymentRefunded        PaymentStatus = "refunded"
	PaymentFailed          PaymentStatus = "failed"
)

const PaymentCurrency = "EUR"

type Payment struct {
	ID                      uuid.UUID     `db:"id" json:"id"`
	BookingID               uuid.UUID     `db:"booking_id" json:"booking_id"`
	Provider                string        `db:"provider" json:"provider"`
	ProviderPaymentIntentID string        `db:"provider_payment_intent_id" json:"provider_payment_intent_id"`
	AmountTotal             float64       `db:"amount_total" json:"amount_total"`
	Currency                string        `db:"currency" json:"currency"`
	PlatformFeeAmount       float64       `db:"platform_fee_amount" json:"platform_fee_amount"`
	Status                  PaymentStatus `db:"status" json:"status"`
	CreatedAt               time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time     `db:"updated_at" json:"updated_at"`
}

// MinorUnits converts a major-unit price to cents.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// PayableBooking is what the payment bridge needs to know about a booking.
type PayableBooking struct {
	BookingID  uuid.UUID `db:"booking_id"`
	CustomerID uuid.UUID `db:"client_user_id"`
	Price      float64   `db:"price_amount"`
}

type CreateIntentRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
}

type CreateIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// WebhookResult is returned to the processor.
type WebhookResult struct {
	OK      bool `json:"ok"`
	Skipped bool `json:"skipped,omitempty"`
}
