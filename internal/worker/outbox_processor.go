package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	"github.com/allservices/marketplace-api/pkg/logger"
	"github.com/allservices/marketplace-api/pkg/messaging"
	"github.com/allservices/marketplace-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Channel       string
}

func (c OutboxProcessorConfig) validate() error {
	switch {
	case c.BatchSize <= 0:
		return errors.New("batch size must be greater than 0")
	case c.PollInterval <= 0:
		return errors.New("poll interval must be greater than 0")
	case c.RetryAttempts <= 0:
		return errors.New("retry attempts must be greater than 0")
	case c.RetryDelay <= 0:
		return errors.New("retry delay must be greater than 0")
	case c.Channel == "":
		return errors.New("channel is required")
	}
	return nil
}

// OutboxProcessor relays committed outbox rows to the broker. Rows are locked
// with SKIP LOCKED so several workers can poll the same table.
type OutboxProcessor struct {
	tx      repository.Transactor
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOutboxProcessor(
	tx repository.Transactor,
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid outbox processor config: %w", err)
	}
	return &OutboxProcessor{
		tx:      tx,
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Start polls until ctx is cancelled.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor", "channel", p.config.Channel)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessBatch relays one batch and returns how many events were published.
// Status updates commit together with the row locks.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	published := 0
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
		if err != nil {
			p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
			return fmt.Errorf("failed to get pending events: %w", err)
		}
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

		for _, event := range events {
			ok, err := p.processEvent(ctx, event)
			if err != nil {
				return err
			}
			if ok {
				published++
			}
		}
		return nil
	})
	return published, err
}

// processEvent returns an error only when the status update fails, which
// aborts the batch so the rows are unlocked and picked up again.
func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) (bool, error) {
	msg := messaging.Message{
		ID:      event.ID.String(),
		Type:    event.EventType,
		Payload: event.Payload,
	}

	if pubErr := p.broker.Publish(ctx, p.config.Channel, msg); pubErr != nil {
		status, retryAt := p.nextAttempt(event)
		errStr := pubErr.Error()

		if status == model.OutboxStatusFailed {
			p.metrics.OutboxEventsFailed.Inc()
			p.logger.Error(pubErr, "Giving up on outbox event",
				"event_id", event.ID.String(),
				"event_type", event.EventType,
				"attempts", event.RetryCount+1)
		} else {
			p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
			p.logger.Warn("Retry publishing outbox event",
				"event_id", event.ID.String(),
				"event_type", event.EventType,
				"retry_at", retryAt)
		}

		if err := p.repo.UpdateStatus(ctx, event.ID, status, &errStr, retryAt); err != nil {
			p.metrics.DatabaseOperations.WithLabelValues("update_event_status", "error").Inc()
			return false, fmt.Errorf("failed to update event %s: %w", event.ID, err)
		}
		return false, nil
	}

	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil, nil); err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("update_event_status", "error").Inc()
		return false, fmt.Errorf("failed to mark event %s processed: %w", event.ID, err)
	}
	p.metrics.OutboxEventsProcessed.Inc()
	return true, nil
}

// nextAttempt doubles the delay on every retry; the last allowed attempt
// marks the event failed.
func (p *OutboxProcessor) nextAttempt(event *model.OutboxEvent) (model.OutboxStatus, *time.Time) {
	if event.RetryCount+1 >= p.config.RetryAttempts {
		return model.OutboxStatusFailed, nil
	}
	at := p.now().Add(p.config.RetryDelay << event.RetryCount)
	return model.OutboxStatusRetry, &at
}
