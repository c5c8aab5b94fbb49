package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

// Emitter records a domain event. Called inside a transaction, the event is
// committed or discarded together with the state change it describes.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type EventService struct {
	outboxRepo repository.OutboxRepository
}

func NewEventService(outboxRepo repository.OutboxRepository) *EventService {
	return &EventService{outboxRepo: outboxRepo}
}

func (s *EventService) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payloadJSON,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}
