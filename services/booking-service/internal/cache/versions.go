// Package cache tracks a per-company availability version in Redis. Every
// committed booking write bumps the counter; slot responses echo it so
// polling clients can tell a stale list from a fresh one without diffing
// slot contents. The counter is an invalidation signal only and never
// substitutes for commit-time conflict validation.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Versions struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewVersions(rdb *redis.Client, logger *slog.Logger) *Versions {
	return &Versions{rdb: rdb, logger: logger}
}

func versionKey(companyID string) string {
	return "company:" + companyID + ":availability:v"
}

// Bump is best effort: a missed increment only delays a poller's refresh.
func (v *Versions) Bump(ctx context.Context, companyID string) {
	if v == nil || v.rdb == nil {
		return
	}
	if err := v.rdb.Incr(ctx, versionKey(companyID)).Err(); err != nil {
		v.logger.Warn("availability version bump failed", "company_id", companyID, "err", err)
	}
}

func (v *Versions) Current(ctx context.Context, companyID string) (int64, error) {
	if v == nil || v.rdb == nil {
		return 0, nil
	}
	n, err := v.rdb.Get(ctx, versionKey(companyID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func ReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}
