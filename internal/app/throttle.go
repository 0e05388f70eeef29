package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	loginAttemptKeyTpl = "login_attempts:%s"

	defaultMaxLoginAttempts = 10
	defaultThrottleWindow   = 5 * time.Minute
)

var ErrTooManyLoginAttempts = errors.New("too many login attempts")

// LoginThrottle rate-limits login attempts per student identifier using a
// redis counter with a TTL window. It is disabled unless a redis URL is
// configured.
type LoginThrottle struct {
	enabled bool
	redis   *redis.Client
	limit   int
	window  time.Duration
}

func NewLoginThrottle(config *Config) (*LoginThrottle, error) {
	if config.Auth.RedisURL == "" {
		return &LoginThrottle{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	limit := config.Auth.MaxLoginAttempts
	if limit <= 0 {
		limit = defaultMaxLoginAttempts
	}
	window := defaultThrottleWindow
	if config.Auth.ThrottleWindowMinutes > 0 {
		window = time.Duration(config.Auth.ThrottleWindowMinutes) * time.Minute
	}

	return &LoginThrottle{
		enabled: true,
		redis:   client,
		limit:   limit,
		window:  window,
	}, nil
}

func (t *LoginThrottle) Close() error {
	if t.redis != nil {
		return t.redis.Close()
	}
	return nil
}

// Allow counts an attempt for the identifier and rejects once the limit is
// exceeded within the window. The window starts at the first attempt.
func (t *LoginThrottle) Allow(ctx context.Context, uuid string) error {
	if !t.enabled {
		return nil
	}

	key := fmt.Sprintf(loginAttemptKeyTpl, uuid)

	pipe := t.redis.Pipeline()
	count := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to count login attempt: %w", err)
	}

	if count.Val() > int64(t.limit) {
		logger.Debug.Printf("Throttling login for %s after %d attempts", uuid, count.Val())
		return ErrTooManyLoginAttempts
	}

	return nil
}
