package ops

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "kycportal/pkg/domain"
	audit "kycportal/pkg/platform/audit"
	"kycportal/pkg/platform/audit/store/memory"
	"kycportal/pkg/platform/circuit"
)

type failingStore struct {
	mu    sync.Mutex
	calls int
}

func (s *failingStore) Append(context.Context, audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("store down")
}

func TestPublisher_DrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store, WithBufferSize(100))

	userID := id.UserID(uuid.New())
	for range 10 {
		pub.Track(context.Background(), audit.Event{
			UserID:    userID,
			SessionID: "s-1",
			Action:    string(audit.EventStagePassed),
		})
	}
	require.NoError(t, pub.Close())

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 10)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_TrackAfterCloseIsDropped(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close())

	pub.Track(context.Background(), audit.Event{UserID: id.UserID(uuid.New()), Action: "late"})
	recent, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestPublisher_CircuitOpensOnRepeatedFailures(t *testing.T) {
	store := &failingStore{}
	m := NewMetricsWith(prometheus.NewRegistry())
	breaker := circuit.New("audit-ops-test", circuit.WithFailureThreshold(2))
	pub := New(store, WithMetrics(m), WithBreaker(breaker))

	for range 5 {
		pub.Track(context.Background(), audit.Event{UserID: id.UserID(uuid.New()), Action: "stage_passed"})
	}
	require.NoError(t, pub.Close())

	assert.Equal(t, 2, store.calls)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.CircuitBreakerDropped))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CircuitBreakerState))
}
