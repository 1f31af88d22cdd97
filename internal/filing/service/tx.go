package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "efile/pkg/domain-errors"
)

// numFilingShards is the number of mutexes the in-memory unit of work
// distributes lock keys over.
const numFilingShards = 64

// DefaultTxTimeout applies when the caller's context has no deadline.
const DefaultTxTimeout = 5 * time.Second

type lockKey struct{}

// WithLockKey names the resource a unit of work serializes on, usually the
// filing id. Units of work with the same key never overlap in memory.
func WithLockKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, lockKey{}, key)
}

// ShardedTx is the in-memory FilingStoreTx. It has no rollback; callers
// validate and compute before their first write.
type ShardedTx struct {
	shards  [numFilingShards]sync.Mutex
	store   Store
	timeout time.Duration
}

func NewShardedTx(store Store, timeout time.Duration) *ShardedTx {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	return &ShardedTx{store: store, timeout: timeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx, t.store)
}

func (t *ShardedTx) selectShard(ctx context.Context) int {
	key, _ := ctx.Value(lockKey{}).(string)
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % numFilingShards)
}
