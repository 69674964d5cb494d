// Package redis connects the optional workflow definition cache. The
// platform runs without it; callers treat a nil client as cache-off.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"civicdesk/internal/platform/config"
)

// Client embeds the go-redis client so store code can use it directly.
type Client struct {
	*redis.Client
}

// New dials Redis from config and verifies the connection. Returns nil
// without error when no URL is configured.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health reports connection liveness for readiness checks.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
