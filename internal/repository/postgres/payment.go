package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

const paymentColumns = `id, booking_id, provider, provider_payment_intent_id, amount_total,
	currency, platform_fee_amount, status, created_at, updated_at`

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{NewBaseRepository(db)}
}

func (r *paymentRepository) GetPayableBooking(ctx context.Context, bookingID uuid.UUID) (*model.PayableBooking, error) {
	query := `
		SELECT b.id AS booking_id, b.client_user_id, s.price_amount
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.id = $1
	`
	var pb model.PayableBooking
	if err := r.get(ctx, &pb, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to get payable booking: %w", err)
	}
	return &pb, nil
}

// Upsert replaces the intent of an existing payment row for the booking.
func (r *paymentRepository) Upsert(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	query := `
		INSERT INTO payments (
			booking_id, provider, provider_payment_intent_id, amount_total,
			currency, platform_fee_amount, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (booking_id) DO UPDATE
		SET provider = EXCLUDED.provider,
			provider_payment_intent_id = EXCLUDED.provider_payment_intent_id,
			amount_total = EXCLUDED.amount_total,
			currency = EXCLUDED.currency,
			platform_fee_amount = EXCLUDED.platform_fee_amount,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING ` + paymentColumns

	var out model.Payment
	err := r.get(ctx, &out, query,
		p.BookingID,
		p.Provider,
		p.ProviderPaymentIntentID,
		p.AmountTotal,
		p.Currency,
		p.PlatformFeeAmount,
		p.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert payment: %w", err)
	}
	return &out, nil
}

func (r *paymentRepository) UpdateStatusByBooking(ctx context.Context, bookingID uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	query := `
		UPDATE payments SET status = $2, updated_at = NOW()
		WHERE booking_id = $1
		RETURNING ` + paymentColumns

	var out model.Payment
	if err := r.get(ctx, &out, query, bookingID, status); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return &out, nil
}

