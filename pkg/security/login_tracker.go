package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-jobtracker-backend/pkg/audit"
	"go-jobtracker-backend/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // Maximum failed attempts before block (default: 5)
	AttemptWindow time.Duration // Time window for tracking attempts (default: 15min)
	BlockDuration time.Duration // How long to block after max attempts (default: 15min)
	UseIPTracking bool          // Also track by IP address (default: true)
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
		UseIPTracking: true,
	}
}

// LoginTracker tracks failed login attempts and enforces temporary blocks.
// Without Redis it fails open: attempts are not tracked and nothing blocks.
type LoginTracker struct {
	config LoginTrackerConfig
	logger *audit.Logger
}

// NewLoginTracker creates a new login tracker with the given config
func NewLoginTracker(config LoginTrackerConfig) *LoginTracker {
	return &LoginTracker{
		config: config,
		logger: audit.Default(),
	}
}

// Redis key patterns
const (
	failLoginUserPrefix    = "fail:login:user:"
	failLoginIPPrefix      = "fail:login:ip:"
	blockedLoginUserPrefix = "blocked:login:user:"
	blockedLoginIPPrefix   = "blocked:login:ip:"
)

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: current count after increment
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// IsBlocked checks if the given email or IP is currently blocked
func (lt *LoginTracker) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	client := redis.Client()
	if client == nil {
		return false, nil
	}

	userKey := blockedLoginUserPrefix + email
	exists, err := client.Exists(ctx, userKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check user block: %w", err)
	}
	if exists > 0 {
		return true, nil
	}

	if lt.config.UseIPTracking && ip != "" {
		ipKey := blockedLoginIPPrefix + ip
		exists, err := client.Exists(ctx, ipKey).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check IP block: %w", err)
		}
		if exists > 0 {
			return true, nil
		}
	}

	return false, nil
}

// RecordFailedAttempt records a failed login attempt and returns whether the
// subject is now blocked.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error) {
	client := redis.Client()
	if client == nil {
		return false, 0, errors.New("redis not available for login tracking")
	}

	ttlSeconds := int(lt.config.AttemptWindow.Seconds())

	userKey := failLoginUserPrefix + email
	userCount, err := lt.atomicIncrement(ctx, client, userKey, ttlSeconds)
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment user counter: %w", err)
	}

	if lt.config.UseIPTracking && ip != "" {
		ipKey := failLoginIPPrefix + ip
		_, _ = lt.atomicIncrement(ctx, client, ipKey, ttlSeconds) // Best effort
	}

	lt.logger.LogLoginFailed(ctx, email, ip, userAgent, requestID, "invalid_credentials")

	if userCount >= lt.config.MaxAttempts {
		if err := lt.createBlock(ctx, email, ip, requestID); err != nil {
			return true, userCount, fmt.Errorf("failed to create block: %w", err)
		}
		return true, userCount, nil
	}

	return false, userCount, nil
}

// atomicIncrement performs an atomic increment with TTL using Lua script
func (lt *LoginTracker) atomicIncrement(ctx context.Context, client *goredis.Client, key string, ttlSeconds int) (int, error) {
	result, err := client.Eval(ctx, incrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

// createBlock creates a temporary block for the user (and optionally IP)
func (lt *LoginTracker) createBlock(ctx context.Context, email, ip, requestID string) error {
	client := redis.Client()
	if client == nil {
		return errors.New("redis not available")
	}

	blockTTL := lt.config.BlockDuration

	userBlockKey := blockedLoginUserPrefix + email
	if err := client.Set(ctx, userBlockKey, "1", blockTTL).Err(); err != nil {
		return fmt.Errorf("failed to set user block: %w", err)
	}

	if lt.config.UseIPTracking && ip != "" {
		ipBlockKey := blockedLoginIPPrefix + ip
		if err := client.Set(ctx, ipBlockKey, "1", blockTTL).Err(); err != nil {
			// User is already blocked, keep going
			lt.logger.Warn("failed to set IP block", err)
		}
	}

	lt.logger.LogBlockCreated(ctx, "email", email, ip, requestID, int(blockTTL.Minutes()))

	return nil
}

// ClearAttempts clears failed login attempts on successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email, ip string) error {
	client := redis.Client()
	if client == nil {
		return nil
	}

	userKey := failLoginUserPrefix + email
	if err := client.Del(ctx, userKey).Err(); err != nil {
		return fmt.Errorf("failed to clear user attempts: %w", err)
	}

	if lt.config.UseIPTracking && ip != "" {
		ipKey := failLoginIPPrefix + ip
		_ = client.Del(ctx, ipKey).Err() // Best effort
	}

	return nil
}
