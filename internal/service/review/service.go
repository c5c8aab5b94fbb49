package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	"github.com/allservices/marketplace-api/internal/service/event"
	"github.com/allservices/marketplace-api/pkg/audit"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/metrics"
)

const ListLimit = 50

type Service struct {
	tx          repository.Transactor
	repo        repository.ReviewRepository
	bookingRepo repository.BookingRepository
	proRepo     repository.ProfessionalRepository
	events      event.Emitter
	metrics     *metrics.Metrics
	auditor     *audit.Logger
}

func NewService(
	tx repository.Transactor,
	repo repository.ReviewRepository,
	bookingRepo repository.BookingRepository,
	proRepo repository.ProfessionalRepository,
	events event.Emitter,
	m *metrics.Metrics,
	auditor *audit.Logger,
) *Service {
	return &Service{
		tx:          tx,
		repo:        repo,
		bookingRepo: bookingRepo,
		proRepo:     proRepo,
		events:      events,
		metrics:     m,
		auditor:     auditor,
	}
}

// Submit creates or replaces the review of a completed booking and
// recomputes the professional's rating from all of their reviews.
func (s *Service) Submit(ctx context.Context, customerID uuid.UUID, req *model.SubmitReviewRequest) (*model.Review, error) {
	if req.Rating == nil || *req.Rating < model.MinRating || *req.Rating > model.MaxRating {
		return nil, apperrors.BadRequest("rating must be between 1 and 5", nil)
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid booking_id", err)
	}

	var saved *model.Review
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookingRepo.GetByID(ctx, bookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("booking", err)
		}
		if err != nil {
			return err
		}
		if b.CustomerID != customerID {
			s.auditor.Denied(ctx, customerID, "review", bookingID, "not the booking customer")
			return apperrors.Forbidden("")
		}
		if b.Status != model.BookingCompleted {
			return apperrors.Conflict("booking must be completed before review")
		}

		saved, err = s.repo.Upsert(ctx, &model.Review{
			BookingID:  bookingID,
			ReviewerID: customerID,
			ReviewedID: b.ProfessionalID,
			Rating:     *req.Rating,
			Comment:    req.Comment,
		})
		if err != nil {
			return err
		}

		agg, err := s.repo.Aggregate(ctx, b.ProfessionalID)
		if err != nil {
			return err
		}
		if err := s.proRepo.SetRatingAggregate(ctx, b.ProfessionalID, agg); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		return s.events.Emit(ctx, model.EventReviewSubmitted, model.ReviewEvent{
			ReviewID:       saved.ID,
			BookingID:      bookingID,
			ProfessionalID: b.ProfessionalID,
			Rating:         saved.Rating,
		})
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to submit review: %w", err))
	}

	s.metrics.ReviewsSubmitted.Inc()
	s.auditor.Action(ctx, customerID, "submit", "review", saved.ID,
		zap.String("booking_id", bookingID.String()), zap.Int("rating", saved.Rating))
	return saved, nil
}

// ListForProfessional returns the most recent reviews addressed to professionalID.
func (s *Service) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.ReviewListing, error) {
	items, err := s.repo.ListForProfessional(ctx, professionalID, ListLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}
