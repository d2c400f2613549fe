package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glunkad/invoice-service/internal/config"
	"github.com/glunkad/invoice-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "invoicebot:session:"

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// RedisStateRepository хранит незавершенные сессии в Redis, чтобы они
// переживали перезапуск бота
type RedisStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateRepository создает хранилище сессий в Redis с заданным TTL
func NewRedisStateRepository(client *redis.Client, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{client: client, ttl: ttl}
}

func redisSessionKey(key domain.SessionKey) string {
	return sessionKeyPrefix + key.String()
}

// Get возвращает сессию пользователя или domain.ErrSessionNotFound
func (r *RedisStateRepository) Get(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	data, err := r.client.Get(ctx, redisSessionKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", key, err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	return &session, nil
}

// Save сохраняет сессию и продлевает ее TTL
func (r *RedisStateRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.Key, err)
	}

	// A zero ttl means no expiration for go-redis.
	if err := r.client.Set(ctx, redisSessionKey(session.Key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.Key, err)
	}
	return nil
}

// Delete удаляет сессию пользователя
func (r *RedisStateRepository) Delete(ctx context.Context, key domain.SessionKey) error {
	if err := r.client.Del(ctx, redisSessionKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", key, err)
	}
	return nil
}
