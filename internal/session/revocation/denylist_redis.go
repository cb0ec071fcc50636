package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var isRevokedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "zonegate_is_user_revoked_duration_ms",
	Help:    "Latency of denylist checks in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const revokedUserKeyPrefix = "denylist:user:"

// RedisDenylist shares revocation state across instances. The key TTL should
// match the longest outstanding token lifetime so entries expire once every
// token issued before the revocation has expired too.
type RedisDenylist struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed denylist.
func NewRedis(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

// Revoke marks a user's tokens as untrusted for ttl.
func (d *RedisDenylist) Revoke(ctx context.Context, userID string, ttl time.Duration) error {
	if userID == "" {
		return nil
	}
	// Key existence is the marker; the value is irrelevant.
	return d.client.Set(ctx, revokedUserKeyPrefix+userID, "1", ttl).Err()
}

// IsRevoked checks the denylist. A missing key means not revoked.
func (d *RedisDenylist) IsRevoked(ctx context.Context, userID string) (bool, error) {
	start := time.Now()
	defer func() {
		isRevokedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if userID == "" {
		return false, nil
	}
	err := d.client.Get(ctx, revokedUserKeyPrefix+userID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
