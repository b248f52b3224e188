// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package storage provides the fiber.Storage backends used by the rate limiter to keep
// its counters outside of the process memory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "apiboot:ratelimit:"

	// the limiter sits on every request, a dead redis must fail fast instead of stalling it
	operationTimeout = 500 * time.Millisecond
	dialTimeout      = 250 * time.Millisecond
	ioTimeout        = 250 * time.Millisecond
	noRetries        = -1
)

var (
	ErrStorageConnection = errors.New("storage connection error")
)

var _ fiber.Storage = &Redis{}

// Redis is a fiber.Storage keeping every key under a common prefix in a redis database.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the redis instance described by rawURL and checks it answers to a PING.
func NewRedis(ctx context.Context, rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageConnection, err)
	}
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout
	opts.MaxRetries = noRetries

	storage := NewRedisFromClient(redis.NewClient(opts))
	if err := storage.Ping(ctx); err != nil {
		_ = storage.Close()
		return nil, err
	}
	return storage, nil
}

// NewRedisFromClient wraps an already configured client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		prefix: keyPrefix,
	}
}

// Ping checks the connection with the redis server.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageConnection, err)
	}
	return nil
}

// Get returns the value stored for key, or nil when the key does not exist.
func (r *Redis) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val for key. A zero exp keeps the key forever.
func (r *Redis) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return r.client.Set(ctx, r.prefix+key, val, exp).Err()
}

// Delete removes key.
func (r *Redis) Delete(key string) error {
	if key == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Reset removes every key under the storage prefix, leaving the rest of the database untouched.
func (r *Redis) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
