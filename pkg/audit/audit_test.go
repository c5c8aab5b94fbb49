package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDenied(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core)

	actor, booking := uuid.New(), uuid.New()
	ctx := WithRequestID(context.Background(), "req-1")
	l.Denied(ctx, actor, "booking", booking, "not the booking customer")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, actor.String(), fields["actor"])
	assert.Equal(t, booking.String(), fields["resource_id"])
	assert.Equal(t, "not the booking customer", fields["reason"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestAction(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core)

	l.Action(context.Background(), uuid.New(), "accept", "booking", uuid.New(), zap.String("status", "accepted"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "accepted", logs.All()[0].ContextMap()["status"])
	assert.Equal(t, "", logs.All()[0].ContextMap()["request_id"])
}
