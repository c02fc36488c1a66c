package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mmcdole/reel/internal/domain"
)

const (
	redisKeyTemplate = "reel:session:%s:%s"
	redisOpTimeout   = 2 * time.Second
)

// RedisStorage implements domain.SessionStorage on Redis, for kiosk setups
// where several front ends share one login. Keys are namespaced by profile.
type RedisStorage struct {
	cli     *redis.Client
	profile string
	logger  *slog.Logger
}

// NewRedisStorage connects to redisURL and verifies the connection.
func NewRedisStorage(ctx context.Context, redisURL, profile string, logger *slog.Logger) (*RedisStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = redisOpTimeout
	opts.WriteTimeout = redisOpTimeout

	cli := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := cli.Ping(pingCtx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	if profile == "" {
		profile = "default"
	}
	return &RedisStorage{cli: cli, profile: profile, logger: logger}, nil
}

func (s *RedisStorage) key(name string) string {
	return fmt.Sprintf(redisKeyTemplate, s.profile, name)
}

func (s *RedisStorage) get(name string, dest interface{}) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	out, err := s.cli.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		s.logger.Error("failed to read session storage", "error", err, "key", name)
		return false
	}
	return json.Unmarshal([]byte(out), dest) == nil
}

func (s *RedisStorage) set(name string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("failed to encode session value", "error", err, "key", name)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.cli.Set(ctx, s.key(name), string(data), 0).Err(); err != nil {
		s.logger.Error("failed to write session storage", "error", err, "key", name)
	}
}

func (s *RedisStorage) del(names ...string) {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.key(n)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.cli.Del(ctx, keys...).Err(); err != nil {
		s.logger.Error("failed to delete from session storage", "error", err, "keys", keys)
	}
}

func (s *RedisStorage) Token() string {
	var token string
	s.get(keyToken, &token)
	return token
}

func (s *RedisStorage) SetToken(token string) { s.set(keyToken, token) }
func (s *RedisStorage) RemoveToken()          { s.del(keyToken) }

func (s *RedisStorage) CachedUser() (domain.User, bool) {
	var user domain.User
	ok := s.get(keyUser, &user)
	return user, ok
}

func (s *RedisStorage) SetCachedUser(user domain.User) { s.set(keyUser, user) }
func (s *RedisStorage) RemoveCachedUser()              { s.del(keyUser) }

func (s *RedisStorage) DeviceID() string {
	var id string
	if s.get(keyDeviceID, &id) && id != "" {
		return id
	}
	id = uuid.NewString()
	s.set(keyDeviceID, id)
	return id
}

func (s *RedisStorage) Clear() { s.del(keyToken, keyUser) }

func (s *RedisStorage) Close() error { return s.cli.Close() }
