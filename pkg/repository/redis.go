package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig represents redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every setting key
}

// RedisSettingRepository keeps settings as plain redis string keys
type RedisSettingRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisSettingRepository connects to redis and verifies the connection
func NewRedisSettingRepository(ctx context.Context, cfg RedisConfig) (*RedisSettingRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return &RedisSettingRepository{client: client, prefix: cfg.Prefix}, nil
}

// GetSetting retrieves a setting value, found is false if the key doesn't exist
func (r *RedisSettingRepository) GetSetting(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting: %w", err)
	}
	return value, true, nil
}

// UpdateSetting stores a setting value and reports whether it differs from the previous one
func (r *RedisSettingRepository) UpdateSetting(ctx context.Context, key, value string) (changed bool, err error) {
	prev, err := r.client.SetArgs(ctx, r.prefix+key, value, redis.SetArgs{Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("update setting: %w", err)
	}
	return prev != value, nil
}

// Close closes the redis client
func (r *RedisSettingRepository) Close() error {
	return r.client.Close()
}
