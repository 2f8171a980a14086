package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipient(t *testing.T) {
	viewer := uuid.New()
	ev := ViewSettled(viewer, uuid.New(), uuid.New(), 70, 170)

	got, ok := ev.Recipient()
	require.True(t, ok)
	assert.Equal(t, viewer, got)
}

func TestRecipientSurvivesWire(t *testing.T) {
	owner := uuid.New()
	data, err := json.Marshal(CampaignPaused(owner, uuid.New(), 40))
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))

	got, ok := ev.Recipient()
	require.True(t, ok)
	assert.Equal(t, owner, got)
	assert.Equal(t, EventCampaignPaused, ev.Type)
}

func TestRecipientMissing(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"no payload", nil},
		{"wrong type", map[string]any{"user_id": 42}},
		{"not a uuid", map[string]any{"user_id": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Event{Payload: tt.payload}.Recipient()
			assert.False(t, ok)
		})
	}
}
