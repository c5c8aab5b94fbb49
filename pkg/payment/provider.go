// Package payment abstracts the card processor behind a narrow interface.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotConfigured    = errors.New("payment provider is not configured")
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Webhook event types the bridge acts on.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

type IntentRequest struct {
	BookingID   uuid.UUID
	AmountMinor int64
	Currency    string
}

type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook notification. BookingID is nil when the
// intent carried no usable booking metadata.
type Event struct {
	ID        string
	Type      string
	IntentID  string
	BookingID *uuid.UUID
}

type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// WebhooksEnabled is false when no signing secret is configured.
	WebhooksEnabled() bool
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// Unconfigured is the provider used when no secret key is present.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "stripe" }

func (Unconfigured) CreateIntent(context.Context, IntentRequest) (*Intent, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) WebhooksEnabled() bool { return false }

func (Unconfigured) ParseWebhook([]byte, string) (*Event, error) {
	return nil, ErrNotConfigured
}
