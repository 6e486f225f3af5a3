package specialty

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached memoizes classification results in Redis so repeated symptom texts
// skip the external call. The cache is best-effort: any Redis error is logged
// and the inner classifier is consulted as if there were no cache.
type Cached struct {
	inner  Classifier
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(inner Classifier, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(symptom string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(symptom))))
	return "specialty:symptom:" + hex.EncodeToString(sum[:])
}

func (c *Cached) Classify(ctx context.Context, symptom string) (string, error) {
	key := cacheKey(symptom)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil && strings.TrimSpace(cached) != "" {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		c.logger.Warn("specialty cache read failed", "error", err.Error())
	}

	label, err := c.inner.Classify(ctx, symptom)
	if err != nil {
		return "", err
	}

	if setErr := c.client.Set(ctx, key, label, c.ttl).Err(); setErr != nil {
		c.logger.Warn("specialty cache write failed", "error", setErr.Error())
	}

	return label, nil
}
