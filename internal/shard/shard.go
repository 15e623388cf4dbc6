// Package shard partitions a table scan into independent shards.
//
// A row with integer primary key k belongs to the shard whose index equals
// k % NumberOfShards. The partition is deterministic, non-overlapping and
// covers every row, so shards can run concurrently or be retried on their
// own without any coordination between them.
package shard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidShardCount is returned when fewer than one shard is requested.
var ErrInvalidShardCount = errors.New("number of shards must be at least 1")

// Descriptor identifies one shard of a run.
type Descriptor struct {
	CurrentShard   int `json:"current_shard"`
	NumberOfShards int `json:"number_of_shards"`
}

// Owns reports whether the row with the given primary key belongs to this
// shard. It uses the same truncated modulo as SQL's % operator so that the
// predicate agrees with the filter applied by source queries.
func (d Descriptor) Owns(key int64) bool {
	return key%int64(d.NumberOfShards) == int64(d.CurrentShard)
}

// Validate checks 0 <= CurrentShard < NumberOfShards.
func (d Descriptor) Validate() error {
	if d.NumberOfShards < 1 {
		return ErrInvalidShardCount
	}
	if d.CurrentShard < 0 || d.CurrentShard >= d.NumberOfShards {
		return fmt.Errorf("current shard %d out of range [0, %d)", d.CurrentShard, d.NumberOfShards)
	}
	return nil
}

// Params returns the named query parameters that select this shard's rows.
func (d Descriptor) Params() map[string]any {
	return map[string]any{
		"num_shards":    d.NumberOfShards,
		"current_shard": d.CurrentShard,
	}
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%d/%d", d.CurrentShard, d.NumberOfShards)
}

// WorkFunc processes a single shard.
type WorkFunc func(ctx context.Context, d Descriptor) error

// Config controls how a sharded run is executed.
type Config struct {
	// NumberOfShards is the number of partitions, at least 1.
	NumberOfShards int

	// Concurrency bounds the number of shards processed at once.
	// Values below 2 run the shards one after another in index order.
	Concurrency int

	// Retries is the number of times a failed shard is re-run from the
	// start before the run fails. Zero disables retries.
	Retries int

	// RetryInitialInterval is the first backoff delay between attempts.
	// Defaults to one second.
	RetryInitialInterval time.Duration
}

// Run invokes work exactly once for every shard index in
// [0, NumberOfShards), retrying a failed shard up to cfg.Retries times.
// It returns after every started shard has finished, with the first
// unrecovered error if any. In parallel mode that error cancels the context
// passed to the shards still running.
func Run(ctx context.Context, cfg Config, work WorkFunc) error {
	if cfg.NumberOfShards < 1 {
		return ErrInvalidShardCount
	}

	run := func(ctx context.Context, d Descriptor) error {
		if err := runWithRetry(ctx, cfg, d, work); err != nil {
			return fmt.Errorf("shard %s: %w", d, err)
		}
		return nil
	}

	if cfg.Concurrency < 2 || cfg.NumberOfShards == 1 {
		for i := range cfg.NumberOfShards {
			if err := run(ctx, Descriptor{CurrentShard: i, NumberOfShards: cfg.NumberOfShards}); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i := range cfg.NumberOfShards {
		d := Descriptor{CurrentShard: i, NumberOfShards: cfg.NumberOfShards}
		g.Go(func() error {
			return run(gctx, d)
		})
	}
	return g.Wait()
}

func runWithRetry(ctx context.Context, cfg Config, d Descriptor, work WorkFunc) error {
	if cfg.Retries <= 0 {
		return work(ctx, d)
	}

	b := backoff.NewExponentialBackOff()
	if cfg.RetryInitialInterval > 0 {
		b.InitialInterval = cfg.RetryInitialInterval
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := work(ctx, d)
		if err != nil && attempt <= cfg.Retries {
			slog.WarnContext(ctx, "Shard failed, retrying from the start",
				"shard", d.String(),
				"attempt", attempt,
				"error", err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(cfg.Retries)+1), //nolint:gosec // Retries is checked positive above
		backoff.WithMaxElapsedTime(0),
	)
	return err
}
