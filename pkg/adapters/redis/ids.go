package redis

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the counter keys.
const DefaultPrefix = "pipeline:"

// Allocator implements ports.IDAllocator with one Redis counter per node type.
// Ids stay unique across processes sharing the same server and prefix.
type Allocator struct {
	client *backend.Client
	prefix string
}

type Option func(*Allocator)

// WithPrefix sets the key prefix for counters.
func WithPrefix(prefix string) Option {
	return func(a *Allocator) {
		a.prefix = prefix
	}
}

// New creates an allocator with its own client.
func New(address, password string, db int, opts ...Option) *Allocator {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates an allocator from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Allocator {
	a := &Allocator{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Next increments the counter for nodeType and returns "{nodeType}-{n}".
func (a *Allocator) Next(ctx context.Context, nodeType string) (string, error) {
	n, err := a.client.Incr(ctx, a.key(nodeType)).Result()
	if err != nil {
		return "", fmt.Errorf("redis error allocating %s id: %w", nodeType, err)
	}
	return fmt.Sprintf("%s-%d", nodeType, n), nil
}

// Ping checks connectivity.
func (a *Allocator) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (a *Allocator) Close() error {
	return a.client.Close()
}

func (a *Allocator) key(nodeType string) string {
	return a.prefix + "ids:" + nodeType
}
