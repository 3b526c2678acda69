package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"routeiq/router/internal/utils"
)

const keyPrefix = "resp:"

// Entry is a cached completion together with the attribution needed to
// report a cache hit against the ledger.
type Entry struct {
	Response     string  `json:"response"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	OriginalCost float64 `json:"original_cost"`
	TokensIn     int     `json:"tokens_in"`
	TokensOut    int     `json:"tokens_out"`
}

// ResponseCache stores completions keyed by the normalized prompt. Redis
// failures degrade to cache misses so routing never depends on the cache
// being reachable.
type ResponseCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewResponseCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ResponseCache {
	return &ResponseCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// Key derives the cache key for a prompt. Prompts that differ only in
// casing or whitespace map to the same key.
func Key(prompt string) string {
	sum := sha256.Sum256([]byte(utils.NormalizePrompt(prompt)))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Lookup returns the cached entry for the prompt, or nil on a miss.
func (c *ResponseCache) Lookup(ctx context.Context, prompt string) *Entry {
	raw, err := c.rdb.Get(ctx, Key(prompt)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache lookup failed, treating as miss", zap.Error(err))
		}
		return nil
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn("Cache entry corrupted, treating as miss", zap.Error(err))
		return nil
	}
	return &entry
}

// Store writes a completion under the prompt's key with the configured TTL.
func (c *ResponseCache) Store(ctx context.Context, prompt string, entry *Entry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, Key(prompt), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write cache entry", zap.Error(err))
	}
}
