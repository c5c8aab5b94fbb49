package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

var bookingCols = []string{
	"id", "client_user_id", "artisan_user_id", "service_id", "address_id",
	"start_at", "end_at", "status", "client_note", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func newID() string { return uuid.NewString() }

func TestBookingRepository_TransitionStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	t.Run("matching status", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE bookings SET status = \$2`).
			WithArgs(id, string(model.BookingAccepted), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(
				id.String(), newID(), newID(), newID(), newID(),
				now, nil, "accepted", nil, now, now,
			))

		b, err := repo.TransitionStatus(ctx, id, model.ActionAccept.AllowedFrom(), model.BookingAccepted)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, model.BookingAccepted, b.Status)
	})

	t.Run("no matching row", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE bookings SET status = \$2`).
			WithArgs(id, string(model.BookingAccepted), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(bookingCols))

		b, err := repo.TransitionStatus(ctx, id, model.ActionAccept.AllowedFrom(), model.BookingAccepted)
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListForProfessionalStatusFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	proID := uuid.New()
	status := model.BookingPending

	cols := append(append([]string{}, bookingCols...), "service_title", "counterpart_first_name", "counterpart_last_name")
	now := time.Now()
	mock.ExpectQuery(`JOIN users u ON u.id = b.client_user_id WHERE b.artisan_user_id = \$1 AND b.status = \$2`).
		WithArgs(proID, string(status)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			newID(), newID(), proID.String(), newID(), newID(),
			now, nil, "pending", nil, now, now,
			"Fuite d'eau", "Alice", "Martin",
		))

	items, err := repo.ListForProfessional(context.Background(), proID, model.BookingFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fuite d'eau", items[0].ServiceTitle)
	assert.Equal(t, "Alice", items[0].CounterpartFirst)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseRepository_WithinTx(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		db, mock := newMockDB(t)
		tx := NewTransactor(db)
		repo := NewOutboxRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO outbox_events`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
			return repo.Create(ctx, &model.OutboxEvent{EventType: model.EventBookingCreated, Payload: []byte(`{}`)})
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		tx := NewTransactor(db)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		tx := NewTransactor(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
			return tx.WithinTx(ctx, func(context.Context) error { return nil })
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(&pq.Error{Code: uniqueViolation, Constraint: "users_email_key"}), repository.ErrDuplicate)
	other := errors.New("other")
	assert.Equal(t, other, mapError(other))
}
