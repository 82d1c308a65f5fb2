package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// poolChecker probes postgres for the readiness endpoint.
type poolChecker struct {
	pool *pgxpool.Pool
}

func (c poolChecker) Name() string                    { return "postgres" }
func (c poolChecker) Check(ctx context.Context) error { return c.pool.Ping(ctx) }

// redisChecker probes redis for the readiness endpoint.
type redisChecker struct {
	client *redis.Client
}

func (c redisChecker) Name() string                    { return "redis" }
func (c redisChecker) Check(ctx context.Context) error { return c.client.Ping(ctx).Err() }
