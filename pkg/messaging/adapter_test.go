package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanBroker struct {
	ch chan []byte
}

func (b *chanBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.ch <- payload
	return nil
}

func (b *chanBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return b.ch, nil
}

func (b *chanBroker) Close() error {
	close(b.ch)
	return nil
}

// flakyBroker fails the first subscribe, then hands out a fresh channel
// per subscription.
type flakyBroker struct {
	mu    sync.Mutex
	calls int
	subs  chan chan []byte
}

func (b *flakyBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (b *flakyBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		return nil, errors.New("connection refused")
	}
	ch := make(chan []byte, 4)
	b.subs <- ch
	return ch, nil
}

func (b *flakyBroker) Close() error { return nil }

func runDispatcher(ctx context.Context, d *Dispatcher, channel string) <-chan error {
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, channel) }()
	return done
}

func TestDispatcherRoutesByType(t *testing.T) {
	broker := &chanBroker{ch: make(chan []byte, 4)}

	var (
		mu       sync.Mutex
		got      []string
		failures []error
	)
	d := NewDispatcher(broker, func(msg Message, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	})
	d.Handle("booking.created", func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg.ID)
		return nil
	})
	d.Handle("booking.accepted", func(ctx context.Context, msg Message) error {
		return errors.New("smtp down")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, broker.Publish(ctx, "events", Message{ID: "1", Type: "booking.created", Payload: json.RawMessage(`{}`)}))
	require.NoError(t, broker.Publish(ctx, "events", Message{ID: "2", Type: "review.submitted", Payload: json.RawMessage(`{}`)}))
	require.NoError(t, broker.Publish(ctx, "events", Message{ID: "3", Type: "booking.accepted", Payload: json.RawMessage(`{}`)}))
	broker.ch <- []byte("not json")

	done := runDispatcher(ctx, d, "events")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failures) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1"}, got)
}

func TestDispatcherResubscribes(t *testing.T) {
	broker := &flakyBroker{subs: make(chan chan []byte, 4)}

	var (
		mu   sync.Mutex
		got  []string
		errs int
	)
	d := NewDispatcher(broker, func(msg Message, err error) {
		mu.Lock()
		defer mu.Unlock()
		errs++
	})
	d.minBackoff = time.Millisecond
	d.maxBackoff = 5 * time.Millisecond
	d.Handle("booking.created", func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg.ID)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runDispatcher(ctx, d, "events")

	send := func(sub chan []byte, id string) {
		raw, err := json.Marshal(Message{ID: id, Type: "booking.created", Payload: json.RawMessage(`{}`)})
		require.NoError(t, err)
		sub <- raw
	}

	// first subscribe fails, the second one delivers and then drops
	sub := <-broker.subs
	send(sub, "1")
	close(sub)

	// the dispatcher comes back on a new subscription
	sub = <-broker.subs
	send(sub, "2")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2"}, got)
	assert.Equal(t, 2, errs, "one failed subscribe and one dropped subscription")
}
