package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})

	log.WithFields(map[string]interface{}{"booking_id": "b-1"}).
		Error(errors.New("stripe down"), "payment intent failed", "attempt", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "payment intent failed", entry["message"])
	assert.Equal(t, "stripe down", entry["error"])
	assert.Equal(t, "b-1", entry["booking_id"])
	assert.EqualValues(t, 2, entry["attempt"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: WarnLevel, Output: &buf, JSON: true})

	log.Info("ignored")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("loud"))
}
