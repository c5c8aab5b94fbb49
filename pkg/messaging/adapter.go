package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var errSubscriptionClosed = errors.New("subscription closed")

// HandlerFunc handles a decoded message.
type HandlerFunc func(ctx context.Context, msg Message) error

// Dispatcher subscribes to a channel and routes each message to the handler
// registered for its type. Unknown types are skipped.
type Dispatcher struct {
	broker   Broker
	handlers map[string]HandlerFunc
	onError  func(msg Message, err error)

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewDispatcher(broker Broker, onError func(msg Message, err error)) *Dispatcher {
	if onError == nil {
		onError = func(Message, error) {}
	}
	return &Dispatcher{
		broker:   broker,
		handlers: make(map[string]HandlerFunc),
		onError:  onError,

		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

func (d *Dispatcher) Handle(eventType string, fn HandlerFunc) {
	d.handlers[eventType] = fn
}

// Run consumes channel until ctx is done. A failed or dropped subscription is
// reported through onError and retried with exponential backoff. Messages
// published while no subscription is active are not replayed.
func (d *Dispatcher) Run(ctx context.Context, channel string) error {
	backoff := d.minBackoff
	for {
		delivered, err := d.consume(ctx, channel)
		if ctx.Err() != nil {
			return nil
		}
		if delivered {
			backoff = d.minBackoff
		}
		d.onError(Message{}, fmt.Errorf("resubscribing to %s in %s: %w", channel, backoff, err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > d.maxBackoff {
			backoff = d.maxBackoff
		}
	}
}

// consume reads one subscription until it closes and reports whether any
// message came through it.
func (d *Dispatcher) consume(ctx context.Context, channel string) (bool, error) {
	msgChan, err := d.broker.Subscribe(ctx, channel)
	if err != nil {
		return false, fmt.Errorf("failed to subscribe: %w", err)
	}

	delivered := false
	for {
		select {
		case <-ctx.Done():
			return delivered, ctx.Err()
		case raw, ok := <-msgChan:
			if !ok {
				return delivered, errSubscriptionClosed
			}
			delivered = true
			d.dispatch(ctx, raw)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		d.onError(msg, fmt.Errorf("failed to decode message: %w", err))
		return
	}

	fn, ok := d.handlers[msg.Type]
	if !ok {
		return
	}
	if err := fn(ctx, msg); err != nil {
		// keep consuming; the handler owns its retries
		d.onError(msg, err)
	}
}
