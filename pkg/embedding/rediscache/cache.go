// Package rediscache decorates an embedding.Provider with a Redis cache so
// repeated queries skip the embedding backend.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-notes-rag-be/pkg/embedding"
)

// DefaultTTL keeps cached vectors for a day; embeddings for the same text
// are stable within a model version.
const DefaultTTL = 24 * time.Hour

type CachedProvider struct {
	inner embedding.Provider
	rdb   *redis.Client
	ttl   time.Duration
}

var _ embedding.Provider = (*CachedProvider)(nil)

// New wraps inner with a cache. A nil client disables caching entirely.
func New(inner embedding.Provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	if p.rdb == nil {
		return p.inner.Generate(ctx, text, taskType)
	}

	key := cacheKey(text, taskType)
	if cached, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
		var values []float32
		if err := json.Unmarshal(cached, &values); err == nil && len(values) > 0 {
			return values, nil
		}
		// Corrupt entry, fall through and recompute.
	}

	values, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(values); err == nil {
		// Cache failures are not the caller's problem.
		p.rdb.Set(ctx, key, encoded, p.ttl)
	}
	return values, nil
}

func cacheKey(text, taskType string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%s:%s", taskType, hex.EncodeToString(sum[:]))
}
