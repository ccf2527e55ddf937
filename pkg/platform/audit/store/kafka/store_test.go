package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "kycportal/pkg/domain"
	audit "kycportal/pkg/platform/audit"
)

type recordingProducer struct {
	keys   []string
	values [][]byte
	err    error
}

func (p *recordingProducer) Produce(_ context.Context, key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
	return nil
}

func TestStore_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("keys by session and derives category", func(t *testing.T) {
		producer := &recordingProducer{}
		store := New(producer)

		err := store.Append(ctx, audit.Event{
			UserID:    id.UserID(uuid.New()),
			SessionID: "session-1",
			Action:    string(audit.EventKYCCompleted),
		})
		require.NoError(t, err)
		require.Len(t, producer.values, 1)
		assert.Equal(t, "session-1", producer.keys[0])

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(producer.values[0], &decoded))
		assert.Equal(t, "compliance", decoded["category"])
		assert.Equal(t, "kyc_completed", decoded["action"])
		assert.NotEmpty(t, decoded["id"])
	})

	t.Run("falls back to user key", func(t *testing.T) {
		producer := &recordingProducer{}
		userID := id.UserID(uuid.New())
		require.NoError(t, New(producer).Append(ctx, audit.Event{UserID: userID, Action: "onboarding_started"}))
		assert.Equal(t, userID.String(), producer.keys[0])
	})

	t.Run("producer failure is wrapped", func(t *testing.T) {
		err := New(&recordingProducer{err: errors.New("broker down")}).Append(ctx, audit.Event{Action: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
	})
}
