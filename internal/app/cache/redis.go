package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/config"
)

const keyPrefix = "transcript:"

// TranscriptCache keeps finished transcriptions in Redis keyed by audio
// content hash, so re-uploads of the same bytes skip the provider entirely.
type TranscriptCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to Redis and verifies the connection. TTL comes from
// CACHE_TTL_HOURS.
func New(addr, password string, logger *zap.Logger) (*TranscriptCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &TranscriptCache{
		client: client,
		ttl:    time.Duration(config.GetCacheTTLHours()) * time.Hour,
		logger: logger,
	}, nil
}

// NewWithClient wraps an existing client, for tests against miniredis or a
// shared pool.
func NewWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TranscriptCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptCache{client: client, ttl: ttl, logger: logger}
}

func (c *TranscriptCache) Close() error {
	return c.client.Close()
}

// Get returns the cached result for a content hash, or (nil, nil) on a miss.
func (c *TranscriptCache) Get(ctx context.Context, fileHash string) (*provider.Result, error) {
	data, err := c.client.Get(ctx, keyPrefix+fileHash).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var result provider.Result
	if err := json.Unmarshal(data, &result); err != nil {
		// A corrupt entry behaves like a miss; the fresh result will replace it.
		c.logger.Warn("dropping unreadable cache entry",
			zap.String("file_hash", fileHash),
			zap.Error(err))
		c.client.Del(ctx, keyPrefix+fileHash)
		return nil, nil
	}

	return &result, nil
}

// Set stores a result under its content hash with the configured TTL.
func (c *TranscriptCache) Set(ctx context.Context, fileHash string, result *provider.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+fileHash, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	c.logger.Debug("cached transcription",
		zap.String("file_hash", fileHash),
		zap.Duration("ttl", c.ttl))
	return nil
}

// Invalidate removes a cached entry, for when the stored transcript is known
// to be stale.
func (c *TranscriptCache) Invalidate(ctx context.Context, fileHash string) error {
	if err := c.client.Del(ctx, keyPrefix+fileHash).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
