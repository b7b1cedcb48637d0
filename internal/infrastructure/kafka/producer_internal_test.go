package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/internal/infrastructure/events"
)

func TestEncode(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	km, err := encode(events.Message{
		Event:      "card.satisfied",
		Key:        "card-1",
		OccurredAt: at,
		Payload:    map[string]any{"card_id": "card-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("card-1"), km.Key)
	assert.Equal(t, at, km.Time)
	require.Len(t, km.Headers, 1)
	assert.Equal(t, "card.satisfied", string(km.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(km.Value, &decoded))
	assert.Equal(t, "card.satisfied", decoded["event"])
	assert.Equal(t, "card-1", decoded["key"])
}

func TestEncode_UnsupportedPayload(t *testing.T) {
	_, err := encode(events.Message{Event: "x", Payload: make(chan int)})
	assert.Error(t, err)
}
