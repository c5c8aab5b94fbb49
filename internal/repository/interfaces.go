package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allservices/marketplace-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	// Transactor runs fn inside one database transaction. Repositories called
	// with the ctx passed to fn take part in it.
	Transactor interface {
		WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		EmailExists(ctx context.Context, email string) (bool, error)
		UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName *string) error
		UpdateRole(ctx context.Context, id uuid.UUID, role model.StoredRole) error
	}

	ProfessionalRepository interface {
		// EnsureProfile inserts an empty profile if none exists.
		EnsureProfile(ctx context.Context, userID uuid.UUID) error
		UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.ProfessionalProfile, error)
		GetCard(ctx context.Context, userID uuid.UUID) (*model.ProfessionalCard, error)
		SetRatingAggregate(ctx context.Context, userID uuid.UUID, agg model.RatingAggregate) error
		Search(ctx context.Context, filters model.SearchFilters) ([]*model.ProfessionalSummary, error)
	}

	ServiceAreaRepository interface {
		Create(ctx context.Context, area *model.ServiceArea) error
		Update(ctx context.Context, professionalID, id uuid.UUID, req *model.UpdateServiceAreaRequest) (*model.ServiceArea, error)
		Delete(ctx context.Context, professionalID, id uuid.UUID) error
		ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.ServiceArea, error)
	}

	CatalogRepository interface {
		ListCategories(ctx context.Context) ([]*model.ServiceCategory, error)
		GetCategoryBySlug(ctx context.Context, slug string) (*model.ServiceCategory, error)
		CreateService(ctx context.Context, svc *model.Service) error
		UpdateService(ctx context.Context, professionalID, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error)
		DeactivateService(ctx context.Context, professionalID, id uuid.UUID) error
		GetActiveService(ctx context.Context, id uuid.UUID) (*model.Service, error)
		ListServices(ctx context.Context, professionalID uuid.UUID, activeOnly bool) ([]*model.ServiceListing, error)
	}

	BookingRepository interface {
		CreateAddress(ctx context.Context, addr *model.Address) error
		Create(ctx context.Context, booking *model.Booking) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		// GetForUpdate locks the row until the surrounding transaction ends.
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		// TransitionStatus moves the booking to `to` only if its current status
		// is one of `from`. It returns nil, nil when no row matched.
		TransitionStatus(ctx context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus) (*model.Booking, error)
		ListForCustomer(ctx context.Context, customerID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error)
		ListForProfessional(ctx context.Context, professionalID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error)
	}

	PaymentRepository interface {
		GetPayableBooking(ctx context.Context, bookingID uuid.UUID) (*model.PayableBooking, error)
		// Upsert keeps a single payment per booking.
		Upsert(ctx context.Context, payment *model.Payment) (*model.Payment, error)
		UpdateStatusByBooking(ctx context.Context, bookingID uuid.UUID, status model.PaymentStatus) (*model.Payment, error)
	}

	ReviewRepository interface {
		Upsert(ctx context.Context, review *model.Review) (*model.Review, error)
		Aggregate(ctx context.Context, reviewedID uuid.UUID) (model.RatingAggregate, error)
		ListForProfessional(ctx context.Context, professionalID uuid.UUID, limit int) ([]*model.ReviewListing, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// GetPendingEventsWithLock must run inside a transaction.
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
