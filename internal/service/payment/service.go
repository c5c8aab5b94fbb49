package payment

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
	"github.com/allservices/marketplace-api/pkg/logger"
	"github.com/allservices/marketplace-api/pkg/metrics"
	"github.com/allservices/marketplace-api/pkg/payment"
)

var webhookStatuses = map[string]model.PaymentStatus{
	payment.EventIntentSucceeded: model.PaymentSucceeded,
	payment.EventIntentFailed:    model.PaymentFailed,
}

var statusEvents = map[model.PaymentStatus]string{
	model.PaymentSucceeded: model.EventPaymentSucceeded,
	model.PaymentFailed:    model.EventPaymentFailed,
}

type Service struct {
	tx       repository.Transactor
	repo     repository.PaymentRepository
	provider payment.Provider
	events   event.Emitter
	metrics  *metrics.Metrics
	auditor  *audit.Logger
	logger   *logger.Logger
}

func NewService(
	tx repository.Transactor,
	repo repository.PaymentRepository,
	provider payment.Provider,
	events event.Emitter,
	m *metrics.Metrics,
	auditor *audit.Logger,
	log *logger.Logger,
) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		provider: provider,
		events:   events,
		metrics:  m,
		auditor:  auditor,
		logger:   log,
	}
}

// CreateIntent opens a card payment for the booking's service price. Callers
// who are not the booking's customer get the same answer as for a missing
// booking.
func (s *Service) CreateIntent(ctx context.Context, customerID uuid.UUID, req *model.CreateIntentRequest) (*model.CreateIntentResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid booking_id", err)
	}

	b, err := s.repo.GetPayableBooking(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		s.auditor.Denied(ctx, customerID, "payment", bookingID, "booking not found")
		return nil, apperrors.NotFound("booking", nil)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if b.CustomerID != customerID {
		s.auditor.Denied(ctx, customerID, "payment", bookingID, "not the booking customer")
		return nil, apperrors.NotFound("booking", nil)
	}

	intent, err := s.provider.CreateIntent(ctx, payment.IntentRequest{
		BookingID:   bookingID,
		AmountMinor: model.MinorUnits(b.Price),
		Currency:    model.PaymentCurrency,
	})
	if errors.Is(err, payment.ErrNotConfigured) {
		return nil, apperrors.Unavailable("payments are not configured", err)
	}
	if err != nil {
		s.metrics.PaymentEvents.WithLabelValues("intent_error").Inc()
		return nil, apperrors.Unavailable("payment provider error", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.Upsert(ctx, &model.Payment{
			BookingID:               bookingID,
			Provider:                s.provider.Name(),
			ProviderPaymentIntentID: intent.ID,
			AmountTotal:             b.Price,
			Currency:                model.PaymentCurrency,
			PlatformFeeAmount:       0,
			Status:                  model.PaymentRequiresPayment,
		})
		if err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventPaymentIntent, model.PaymentEvent{
			BookingID: bookingID,
			IntentID:  p.ProviderPaymentIntentID,
			Status:    p.Status,
		})
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to record payment: %w", err))
	}

	s.metrics.PaymentEvents.WithLabelValues("intent_created").Inc()
	s.auditor.Action(ctx, customerID, "create_intent", "payment", bookingID, zap.String("intent_id", intent.ID))
	return &model.CreateIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// HandleWebhook verifies and applies a processor notification. Only the
// payment row changes; the booking status is left alone.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*model.WebhookResult, error) {
	if !s.provider.WebhooksEnabled() {
		s.metrics.PaymentEvents.WithLabelValues("webhook_skipped").Inc()
		return &model.WebhookResult{OK: true, Skipped: true}, nil
	}

	evt, err := s.provider.ParseWebhook(payload, signature)
	switch {
	case errors.Is(err, payment.ErrMissingSignature):
		return nil, apperrors.BadRequest("missing signature", err)
	case errors.Is(err, payment.ErrInvalidSignature):
		s.metrics.PaymentEvents.WithLabelValues("webhook_rejected").Inc()
		return nil, apperrors.BadRequest("webhook signature verification failed", err)
	case err != nil:
		return nil, apperrors.BadRequest("invalid webhook payload", err)
	}

	status, ok := webhookStatuses[evt.Type]
	if !ok || evt.BookingID == nil {
		s.logger.Debug("webhook ignored", "event_id", evt.ID, "type", evt.Type)
		return &model.WebhookResult{OK: true}, nil
	}
	bookingID := *evt.BookingID

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.UpdateStatusByBooking(ctx, bookingID, status)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("webhook for unknown payment", "booking_id", bookingID.String(), "event_id", evt.ID)
			return nil
		}
		if err != nil {
			return err
		}
		return s.events.Emit(ctx, statusEvents[status], model.PaymentEvent{
			BookingID: bookingID,
			IntentID:  p.ProviderPaymentIntentID,
			Status:    p.Status,
		})
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to apply webhook: %w", err))
	}

	s.metrics.PaymentEvents.WithLabelValues(string(status)).Inc()
	s.auditor.Action(ctx, uuid.Nil, "webhook", "payment", bookingID,
		zap.String("event_id", evt.ID), zap.String("type", evt.Type))
	return &model.WebhookResult{OK: true}, nil
}
