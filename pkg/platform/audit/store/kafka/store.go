// Package kafka publishes audit events to a Kafka topic. Kafka is the
// durable sink; downstream consumers materialize the events for review.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	audit "kycportal/pkg/platform/audit"
)

// Producer writes one keyed record synchronously.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
}

// message is the JSON structure published to Kafka.
type message struct {
	ID string `json:"id"`
	audit.Event
}

type Store struct {
	producer Producer
}

func New(producer Producer) *Store {
	return &Store{producer: producer}
}

// Append publishes the event keyed by session so events of one onboarding
// session land on one partition in order.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	// Always derive category from action when the publisher did not set one.
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	payload, err := json.Marshal(message{ID: uuid.NewString(), Event: event})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	key := event.SessionID
	if key == "" {
		key = event.UserID.String()
	}
	if err := s.producer.Produce(ctx, []byte(key), payload); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
