package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/sony/gobreaker"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/allservices/marketplace-api/pkg/payment"
)

// Config is read from the environment only; secrets never live in config.yml.
type Config struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
}

// LoadConfig reads STRIPE_* variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read stripe config: %w", err)
	}
	return cfg, nil
}

type intentCreator interface {
	New(params *stripeapi.PaymentIntentParams) (*stripeapi.PaymentIntent, error)
}

type Provider struct {
	intents       intentCreator
	webhookSecret string
	cb            *gobreaker.CircuitBreaker
}

// New returns a provider that refuses intents when the secret key is empty;
// webhooks are still verified if a signing secret is set.
func New(cfg Config) payment.Provider {
	if cfg.SecretKey == "" {
		return webhookOnly{secret: cfg.WebhookSecret}
	}
	sc := client.New(cfg.SecretKey, nil)
	return newProvider(sc.PaymentIntents, cfg.WebhookSecret)
}

func newProvider(intents intentCreator, webhookSecret string) *Provider {
	return &Provider{
		intents:       intents,
		webhookSecret: webhookSecret,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "stripe",
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// card and request errors are the caller's problem, not an outage
				var se *stripeapi.Error
				if errors.As(err, &se) {
					return se.HTTPStatusCode < 500
				}
				return err == nil
			},
		}),
	}
}

func (p *Provider) Name() string { return "stripe" }

func (p *Provider) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(req.AmountMinor),
		Currency: stripeapi.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID.String())

	res, err := p.cb.Execute(func() (interface{}, error) {
		return p.intents.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	pi := res.(*stripeapi.PaymentIntent)
	return &payment.Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (p *Provider) WebhooksEnabled() bool { return p.webhookSecret != "" }

func (p *Provider) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	return parseWebhook(p.webhookSecret, payload, signature)
}

// webhookOnly verifies webhooks when the API key is absent.
type webhookOnly struct {
	payment.Unconfigured
	secret string
}

func (w webhookOnly) WebhooksEnabled() bool { return w.secret != "" }

func (w webhookOnly) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	return parseWebhook(w.secret, payload, signature)
}

func parseWebhook(secret string, payload []byte, signature string) (*payment.Event, error) {
	if secret == "" {
		return nil, payment.ErrNotConfigured
	}
	if signature == "" {
		return nil, payment.ErrMissingSignature
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}

	out := &payment.Event{ID: evt.ID, Type: string(evt.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || evt.Data == nil {
		return out, nil
	}

	var pi stripeapi.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}
	out.IntentID = pi.ID
	if raw, ok := pi.Metadata["booking_id"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			out.BookingID = &id
		}
	}
	return out, nil
}
