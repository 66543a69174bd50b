// Package redis implements chatflow.Store and chatflow.Locker on Redis.
// Each flow is one JSON value under prefix+"flow:"; a set at prefix+"index"
// indexes flow ids. Locks live under prefix+"lock:", so no flow id can
// collide with the index or a lock.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/meikuraledutech/chatflow"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store and locker write.
const DefaultPrefix = "chatflow:"

// Store implements chatflow.Store using Redis.
type Store struct {
	client *backend.Client
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix. Defaults to DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the underlying client.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Locker returns a Locker sharing the store's client and prefix.
func (s *Store) Locker() *Locker {
	return NewLocker(s.client, s.prefix)
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string { return s.prefix + "flow:" + id }

func (s *Store) indexKey() string { return s.prefix + "index" }

// CreateSchema is a no-op; Redis keys need no setup.
func (s *Store) CreateSchema(context.Context) error { return nil }

// DropSchema deletes every flow listed in the index, then the index itself.
func (s *Store) DropSchema(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("chatflow: read index: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.key(id))
	}
	keys = append(keys, s.indexKey())
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) SaveFlow(ctx context.Context, f *chatflow.Flow) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	data, err := json.Marshal(f.Clone())
	if err != nil {
		return fmt.Errorf("chatflow: encode flow: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(f.ID), data, 0)
	pipe.SAdd(ctx, s.indexKey(), f.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("chatflow: save flow: %w", err)
	}
	return nil
}

func (s *Store) GetFlow(ctx context.Context, id string) (*chatflow.Flow, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, chatflow.ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("chatflow: get flow: %w", err)
	}

	var f chatflow.Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("chatflow: decode flow %s: %w", id, err)
	}
	if f.Nodes == nil {
		f.Nodes = []chatflow.Node{}
	}
	if f.Edges == nil {
		f.Edges = []chatflow.Edge{}
	}
	f.ID = id
	return &f, nil
}

func (s *Store) DeleteFlow(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.SRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("chatflow: delete flow: %w", err)
	}
	return nil
}

func (s *Store) ListFlows(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("chatflow: list flows: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}
