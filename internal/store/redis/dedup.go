package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupPrefix = "clinicpay:webhook:"

// DedupGuard is a best-effort first-seen marker for webhook deliveries,
// keyed by the aggregator transaction id. The store-level conditional update
// remains the real idempotency contract; this only spares duplicate work on
// redelivery storms.
type DedupGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDedupGuard(addr string, ttl time.Duration) *DedupGuard {
	return &DedupGuard{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// CheckAndMark marks the delivery as seen. Returns true when the same
// transaction id was already marked within the TTL.
func (g *DedupGuard) CheckAndMark(ctx context.Context, transactionID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, dedupPrefix+transactionID, 1, g.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Release clears the mark so a failed delivery can be retried.
func (g *DedupGuard) Release(ctx context.Context, transactionID string) error {
	return g.client.Del(ctx, dedupPrefix+transactionID).Err()
}

func (g *DedupGuard) Close() error { return g.client.Close() }
