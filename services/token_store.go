// ABOUTME: Storage backends for cached IMS tokens
// ABOUTME: In-memory TTL cache by default, Redis when replicas must share tokens

package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/markalston/vip-marketplace-proxy/cache"
	"github.com/markalston/vip-marketplace-proxy/models"
)

// TokenStore persists tokens per environment for the life of the process
// (or of the shared Redis entry). Implementations treat backend failures as
// cache misses.
type TokenStore interface {
	Get(ctx context.Context, environment string) (*models.OAuthToken, bool)
	Set(ctx context.Context, environment string, token *models.OAuthToken, ttl time.Duration)
	Delete(ctx context.Context, environment string)
}

func tokenKey(environment string) string {
	return "ims-token:" + environment
}

// MemoryTokenStore keeps tokens in the process-local TTL cache.
type MemoryTokenStore struct {
	cache *cache.Cache
}

func NewMemoryTokenStore(c *cache.Cache) *MemoryTokenStore {
	return &MemoryTokenStore{cache: c}
}

func (s *MemoryTokenStore) Get(_ context.Context, environment string) (*models.OAuthToken, bool) {
	val, ok := s.cache.Get(tokenKey(environment))
	if !ok {
		return nil, false
	}
	token, ok := val.(*models.OAuthToken)
	return token, ok
}

func (s *MemoryTokenStore) Set(_ context.Context, environment string, token *models.OAuthToken, ttl time.Duration) {
	s.cache.SetWithTTL(tokenKey(environment), token, ttl)
}

func (s *MemoryTokenStore) Delete(_ context.Context, environment string) {
	s.cache.Clear(tokenKey(environment))
}

// RedisTokenStore shares tokens between proxy replicas.
type RedisTokenStore struct {
	redis *cache.Redis
}

func NewRedisTokenStore(r *cache.Redis) *RedisTokenStore {
	return &RedisTokenStore{redis: r}
}

func (s *RedisTokenStore) Get(ctx context.Context, environment string) (*models.OAuthToken, bool) {
	data, ok, err := s.redis.Get(ctx, tokenKey(environment))
	if err != nil {
		slog.Warn("Token store read failed, treating as miss", "environment", environment, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var token models.OAuthToken
	if err := json.Unmarshal(data, &token); err != nil {
		slog.Warn("Discarding undecodable cached token", "environment", environment, "error", err)
		return nil, false
	}
	return &token, true
}

func (s *RedisTokenStore) Set(ctx context.Context, environment string, token *models.OAuthToken, ttl time.Duration) {
	data, err := json.Marshal(token)
	if err != nil {
		slog.Warn("Failed to encode token for store", "environment", environment, "error", err)
		return
	}
	if err := s.redis.SetWithTTL(ctx, tokenKey(environment), data, ttl); err != nil {
		slog.Warn("Token store write failed", "environment", environment, "error", err)
	}
}

func (s *RedisTokenStore) Delete(ctx context.Context, environment string) {
	if err := s.redis.Clear(ctx, tokenKey(environment)); err != nil {
		slog.Warn("Token store delete failed", "environment", environment, "error", err)
	}
}
