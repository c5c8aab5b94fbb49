package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	"github.com/allservices/marketplace-api/internal/service/event"
	"github.com/allservices/marketplace-api/pkg/audit"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/metrics"
)

var actionEvents = map[model.BookingAction]string{
	model.ActionAccept:   model.EventBookingAccepted,
	model.ActionReject:   model.EventBookingRejected,
	model.ActionComplete: model.EventBookingCompleted,
	model.ActionCancel:   model.EventBookingCancelled,
}

type Service struct {
	tx          repository.Transactor
	repo        repository.BookingRepository
	catalogRepo repository.CatalogRepository
	events      event.Emitter
	metrics     *metrics.Metrics
	auditor     *audit.Logger
}

func NewService(
	tx repository.Transactor,
	repo repository.BookingRepository,
	catalogRepo repository.CatalogRepository,
	events event.Emitter,
	m *metrics.Metrics,
	auditor *audit.Logger,
) *Service {
	return &Service{
		tx:          tx,
		repo:        repo,
		catalogRepo: catalogRepo,
		events:      events,
		metrics:     m,
		auditor:     auditor,
	}
}

// Timestamps without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

func parseTimestamp(v string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Create books an active service for customerID. The address and the booking
// are written in one transaction; the professional is the service owner.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid service_id", err)
	}
	startAt, err := parseTimestamp(req.StartAt)
	if err != nil {
		return nil, apperrors.BadRequest("invalid start_at", err)
	}
	var endAt *time.Time
	if req.EndAt != nil && *req.EndAt != "" {
		t, err := parseTimestamp(*req.EndAt)
		if err != nil {
			return nil, apperrors.BadRequest("invalid end_at", err)
		}
		if !t.After(startAt) {
			return nil, apperrors.BadRequest("end_at must be after start_at", nil)
		}
		endAt = &t
	}

	svc, err := s.catalogRepo.GetActiveService(ctx, serviceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("service", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	addr := newAddress(customerID, req.Address)
	booking := &model.Booking{
		CustomerID:     customerID,
		ProfessionalID: svc.ProfessionalID,
		ServiceID:      svc.ID,
		StartAt:        startAt.UTC(),
		EndAt:          endAt,
		Status:         model.BookingPending,
		ClientNote:     req.ClientNote,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateAddress(ctx, addr); err != nil {
			return err
		}
		booking.AddressID = addr.ID
		if err := s.repo.Create(ctx, booking); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventBookingCreated, model.NewBookingEvent(booking))
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create booking: %w", err))
	}

	s.metrics.BookingTransitions.WithLabelValues("create", "applied").Inc()
	s.auditor.Action(ctx, customerID, "create", "booking", booking.ID,
		zap.String("service_id", svc.ID.String()),
		zap.String("artisan_user_id", svc.ProfessionalID.String()))
	return booking, nil
}

// newAddress keeps a location only when both coordinates are present.
func newAddress(userID uuid.UUID, in model.AddressInput) *model.Address {
	addr := &model.Address{
		UserID:     userID,
		Label:      in.Label,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    model.DefaultCountry,
	}
	if in.Country != nil && *in.Country != "" {
		addr.Country = *in.Country
	}
	if in.Lat != nil && in.Lng != nil {
		addr.Lat, addr.Lng = in.Lat, in.Lng
	}
	return addr
}

// Get returns the booking to either party.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("booking", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !b.IsParty(userID) {
		s.auditor.Denied(ctx, userID, "booking", id, "not a party")
		return nil, apperrors.Forbidden("")
	}
	return b, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error) {
	items, err := s.repo.ListForCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (s *Service) ListForProfessional(ctx context.Context, professionalID uuid.UUID, filter model.BookingFilter) ([]*model.BookingListing, error) {
	items, err := s.repo.ListForProfessional(ctx, professionalID, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (s *Service) Accept(ctx context.Context, professionalID, id uuid.UUID) (*model.Booking, error) {
	return s.Transition(ctx, professionalID, id, model.ActionAccept)
}

func (s *Service) Reject(ctx context.Context, professionalID, id uuid.UUID) (*model.Booking, error) {
	return s.Transition(ctx, professionalID, id, model.ActionReject)
}

func (s *Service) Complete(ctx context.Context, professionalID, id uuid.UUID) (*model.Booking, error) {
	return s.Transition(ctx, professionalID, id, model.ActionComplete)
}

func (s *Service) Cancel(ctx context.Context, customerID, id uuid.UUID) (*model.Booking, error) {
	return s.Transition(ctx, customerID, id, model.ActionCancel)
}

// Transition applies action on behalf of actorID. The row is locked for the
// duration of the check and the conditional update. A professional action
// from a state it does not apply to returns a nil booking and no error.
// Cancelling a completed booking is a conflict.
func (s *Service) Transition(ctx context.Context, actorID, id uuid.UUID, action model.BookingAction) (*model.Booking, error) {
	var updated *model.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("booking", err)
		}
		if err != nil {
			return err
		}

		owner := current.CustomerID
		if action.ByProfessional() {
			owner = current.ProfessionalID
		}
		if owner != actorID {
			s.auditor.Denied(ctx, actorID, "booking", id, fmt.Sprintf("%s by non-owner", action))
			return apperrors.Forbidden("")
		}

		if !action.CanApply(current.Status) {
			if action == model.ActionCancel {
				return apperrors.Conflict("cannot cancel a completed booking")
			}
			return nil
		}

		b, err := s.repo.TransitionStatus(ctx, id, action.AllowedFrom(), action.Target())
		if err != nil || b == nil {
			return err
		}
		updated = b
		return s.events.Emit(ctx, actionEvents[action], model.NewBookingEvent(b))
	})
	if err != nil {
		s.metrics.BookingTransitions.WithLabelValues(string(action), "rejected").Inc()
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to %s booking: %w", action, err))
	}

	if updated == nil {
		s.metrics.BookingTransitions.WithLabelValues(string(action), "noop").Inc()
		return nil, nil
	}
	s.metrics.BookingTransitions.WithLabelValues(string(action), "applied").Inc()
	s.auditor.Action(ctx, actorID, string(action), "booking", id, zap.String("status", string(updated.Status)))
	return updated, nil
}
