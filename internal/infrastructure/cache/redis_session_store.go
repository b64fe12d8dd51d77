// Package cache provides session tracking stores for proposal view
// engagement.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	proposalapp "github.com/tierquote/backend/internal/application/proposal"
)

// sessionTTL keeps session keys around long enough to aggregate dwell time
// across beacons without accumulating stale sessions.
const sessionTTL = 24 * time.Hour

// RedisSessionStore implements SessionStore using Redis.
// This is suitable for distributed deployments where multiple instances
// need to share session state.
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSessionStore creates a new Redis-based session store
func NewRedisSessionStore(cfg RedisConfig) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSessionStore{
		client:    client,
		keyPrefix: "proposal:session:",
	}, nil
}

// NewRedisSessionStoreWithClient creates a store with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = "proposal:session:"
	}
	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Touch accumulates viewing time for one session on one proposal.
// Beacons are additive, a session that reports 30s twice has dwelled 60s.
func (s *RedisSessionStore) Touch(ctx context.Context, estimateID uuid.UUID, sessionID string, duration time.Duration) error {
	key := s.keyPrefix + estimateID.String() + ":" + sessionID

	if err := s.client.IncrBy(ctx, key, int64(duration.Seconds())).Err(); err != nil {
		return fmt.Errorf("failed to record session time: %w", err)
	}
	if err := s.client.Expire(ctx, key, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to refresh session ttl: %w", err)
	}
	return nil
}

// DwellTime returns the accumulated viewing time for one session
func (s *RedisSessionStore) DwellTime(ctx context.Context, estimateID uuid.UUID, sessionID string) (time.Duration, error) {
	key := s.keyPrefix + estimateID.String() + ":" + sessionID

	seconds, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read session time: %w", err)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// Ensure RedisSessionStore implements SessionStore
var _ proposalapp.SessionStore = (*RedisSessionStore)(nil)
