package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/config"
	"github.com/spec-kit/revdup-client/internal/domain"
	"github.com/spec-kit/revdup-client/pkg/util"
)

// RedisStore keeps the session record in Redis under two prefixed keys. The
// pair is written with a single MSET and cleared with a single DEL so the
// invariant survives a crash between operations.
type RedisStore struct {
	watchHub

	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisStore connects to Redis using the provided configuration.
func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &RedisStore{client: client, prefix: cfg.KeyPrefix, logger: logger}
}

// NewRedisStoreWithClient wraps an existing client, mainly for tests.
func NewRedisStoreWithClient(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) tokenKey() string { return s.prefix + KeyAuthToken }
func (s *RedisStore) roleKey() string  { return s.prefix + KeyUserRole }

func (s *RedisStore) Read(ctx context.Context) (domain.Session, error) {
	values, err := s.client.MGet(ctx, s.tokenKey(), s.roleKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.Session{}, util.NewStorageError("read", err)
	}
	if len(values) < 2 {
		return domain.Session{}, nil
	}

	token, _ := values[0].(string)
	if token == "" {
		return domain.Session{}, nil
	}
	role, _ := values[1].(string)
	return domain.Session{Token: token, Role: domain.ParseRole(role)}, nil
}

func (s *RedisStore) Write(ctx context.Context, token string, role domain.Role) error {
	if token == "" || role == "" {
		return util.NewValidationError("token and role must both be set", nil)
	}

	if err := s.client.MSet(ctx, s.tokenKey(), token, s.roleKey(), string(role)).Err(); err != nil {
		return util.NewStorageError("write", err)
	}

	s.publish(domain.Session{Token: token, Role: role})
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.roleKey()).Err(); err != nil {
		return util.NewStorageError("clear", err)
	}

	s.publish(domain.Session{})
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() {
	if s != nil && s.client != nil {
		_ = s.client.Close()
	}
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("redis client not configured")
	}
	return s.client.Ping(ctx).Err()
}
