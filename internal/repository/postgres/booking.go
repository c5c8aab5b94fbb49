package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

const bookingColumns = `id, client_user_id, artisan_user_id, service_id, address_id,
	start_at, end_at, status, client_note, created_at, updated_at`

const addressColumns = `id, user_id, label, address_line1, address_line2, city, postal_code, country,
	ST_Y(location::geometry) AS lat,
	ST_X(location::geometry) AS lng`

type bookingRepository struct {
	BaseRepository
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{NewBaseRepository(db)}
}

// CreateAddress stores a location only when both coordinates are present.
func (r *bookingRepository) CreateAddress(ctx context.Context, addr *model.Address) error {
	if addr.Country == "" {
		addr.Country = model.DefaultCountry
	}

	query := `
		INSERT INTO addresses (
			user_id, label, address_line1, address_line2, city, postal_code, country, location
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			CASE
				WHEN $8::double precision IS NULL OR $9::double precision IS NULL THEN NULL
				ELSE ST_SetSRID(ST_MakePoint($9, $8), 4326)::geography
			END
		)
		RETURNING ` + addressColumns

	err := r.get(ctx, addr, query,
		addr.UserID,
		addr.Label,
		addr.Line1,
		addr.Line2,
		addr.City,
		addr.PostalCode,
		addr.Country,
		addr.Lat,
		addr.Lng,
	)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *bookingRepository) Create(ctx context.Context, b *model.Booking) error {
	query := `
		INSERT INTO bookings (
			client_user_id, artisan_user_id, service_id, address_id, start_at, end_at, status, client_note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookingColumns

	if b.Status == "" {
		b.Status = model.BookingPending
	}

	err := r.get(ctx, b, query,
		b.CustomerID,
		b.ProfessionalID,
		b.ServiceID,
		b.AddressID,
		b.StartAt,
		b.EndAt,
		b.Status,
		b.ClientNote,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.get(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (r *bookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.get(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return &b, nil
}

func (r *bookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus) (*model.Booking, error) {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + bookingColumns

	var b model.Booking
	err := r.get(ctx, &b, query, id, to, pq.Array(allowed))
	if err == repository.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition booking: %w", err)
	}
	return &b, nil
}

func (r *bookingRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error) {
	return r.list(ctx, "b.client_user_id", "b.artisan_user_id", customerID, filter)
}

func (r *bookingRepository) ListForProfessional(ctx context.Context, professionalID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error) {
	return r.list(ctx, "b.artisan_user_id", "b.client_user_id", professionalID, filter)
}

// list selects the bookings where ownerCol = userID, joined with the party in counterpartCol.
func (r *bookingRepository) list(ctx context.Context, ownerCol, counterpartCol string, userID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error) {
	args := &queryArgs{}
	where := ownerCol + " = " + args.add(userID)
	if filter.Status != nil {
		where += " AND b.status = " + args.add(*filter.Status)
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.client_user_id, b.artisan_user_id, b.service_id, b.address_id,
			b.start_at, b.end_at, b.status, b.client_note, b.created_at, b.updated_at,
			s.title AS service_title,
			u.first_name AS counterpart_first_name,
			u.last_name AS counterpart_last_name
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		JOIN users u ON u.id = %s
		WHERE %s
		ORDER BY b.created_at DESC, b.id ASC`, counterpartCol, where)

	bookings := []*model.BookingListing{}
	if err := r.selectAll(ctx, &bookings, query, args.values...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
