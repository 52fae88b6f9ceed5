package winthor

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisCache_RoundTripAndTTL(t *testing.T) {
	fr := newFakeRedis()
	cache := NewRedisCache(fr)
	now := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)
	cache.nowFunc = func() time.Time { return now }
	ctx := context.Background()

	tok := Token{Value: "abc", ExpiresAt: now.Add(6 * time.Hour)}
	if err := cache.Set(ctx, "7", tok); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if fr.ttl["wta:winthor:token:7"] != 6*time.Hour {
		t.Fatalf("expected redis ttl to follow expiry, got %s", fr.ttl["wta:winthor:token:7"])
	}

	got, ok, err := cache.Get(ctx, "7")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Value != "abc" || !got.ExpiresAt.Equal(tok.ExpiresAt) {
		t.Fatalf("unexpected token %+v", got)
	}

	for i := 0; i < 2; i++ {
		if err := cache.Delete(ctx, "7"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
	}
	if _, ok, err := cache.Get(ctx, "7"); ok || err != nil {
		t.Fatalf("expected miss after delete, got ok=%v err=%v", ok, err)
	}
}

func TestRedisCache_ExpiredTokenNotStored(t *testing.T) {
	fr := newFakeRedis()
	cache := NewRedisCache(fr)
	if err := cache.Set(context.Background(), "1", Token{Value: "x", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if len(fr.data) != 0 {
		t.Fatalf("expired token must not be written")
	}
}

func TestMemoryCache(t *testing.T) {
	m := NewMemoryCache()
	ctx := context.Background()
	if _, ok, _ := m.Get(ctx, "1"); ok {
		t.Fatalf("expected miss")
	}
	_ = m.Set(ctx, "1", Token{Value: "a", ExpiresAt: time.Now().Add(time.Hour)})
	tok, ok, _ := m.Get(ctx, "1")
	if !ok || !tok.Valid(time.Now()) {
		t.Fatalf("expected valid token")
	}
	if tok.Valid(tok.ExpiresAt) {
		t.Fatalf("token must be invalid at its expiry instant")
	}
}
