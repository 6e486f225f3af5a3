package specialty

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, inner Classifier) (*Cached, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCached(inner, client, time.Hour, nil), srv
}

func TestCachedMemoizesResult(t *testing.T) {
	inner := &stubClassifier{label: "Tim mạch"}
	cache, _ := newTestCache(t, inner)

	got, err := cache.Classify(context.Background(), "đau tim")
	require.NoError(t, err)
	assert.Equal(t, "Tim mạch", got)
	assert.Equal(t, 1, inner.calls)

	got, err = cache.Classify(context.Background(), "đau tim")
	require.NoError(t, err)
	assert.Equal(t, "Tim mạch", got)
	assert.Equal(t, 1, inner.calls, "second call should be served from cache")
}

func TestCachedKeyIsCaseInsensitive(t *testing.T) {
	inner := &stubClassifier{label: "Da liễu"}
	cache, _ := newTestCache(t, inner)

	_, err := cache.Classify(context.Background(), "Ngứa Da")
	require.NoError(t, err)
	_, err = cache.Classify(context.Background(), "ngứa da")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedDegradesWhenRedisDown(t *testing.T) {
	inner := &stubClassifier{label: "Đa khoa"}
	cache, srv := newTestCache(t, inner)

	srv.Close()

	got, err := cache.Classify(context.Background(), "mệt mỏi")
	require.NoError(t, err)
	assert.Equal(t, "Đa khoa", got)

	got, err = cache.Classify(context.Background(), "mệt mỏi")
	require.NoError(t, err)
	assert.Equal(t, "Đa khoa", got)
	assert.Equal(t, 2, inner.calls, "no cache hits while redis is down")
}

func TestCachedExpiry(t *testing.T) {
	inner := &stubClassifier{label: "Tim mạch"}
	cache, srv := newTestCache(t, inner)

	_, err := cache.Classify(context.Background(), "đau tim")
	require.NoError(t, err)

	srv.FastForward(2 * time.Hour)

	_, err = cache.Classify(context.Background(), "đau tim")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entry should hit the inner classifier again")
}
