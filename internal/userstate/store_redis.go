package userstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "kycportal/pkg/domain"
	"kycportal/pkg/platform/sentinel"
)

const (
	keyPrefix       = "userstate:"
	defaultStateTTL = 24 * time.Hour
	maxTxRetries    = 3
)

// RedisStore shares user state between instances. Updates use WATCH so two
// concurrent writers never lose each other's changes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithTTL sets how long a state lives without updates.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: defaultStateTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(userID id.UserID) string {
	return keyPrefix + userID.String()
}

func (s *RedisStore) Get(ctx context.Context, userID id.UserID) (*State, error) {
	raw, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user state: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode user state: %w", err)
	}
	return &st, nil
}

// Update is a read-modify-write under WATCH, retried a few times on conflict.
func (s *RedisStore) Update(ctx context.Context, userID id.UserID, fn func(*State)) (*State, error) {
	k := key(userID)
	var result *State

	txf := func(tx *redis.Tx) error {
		st := &State{UserID: userID}
		raw, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, st); err != nil {
				return fmt.Errorf("decode user state: %w", err)
			}
		}
		fn(st)
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode user state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, s.ttl)
			return nil
		})
		if err == nil {
			result = st
		}
		return err
	}

	for range maxTxRetries {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update user state: %w", err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("update user state: %w", redis.TxFailedErr)
}
