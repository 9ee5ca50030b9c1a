package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage - Backend поверх Redis.
type RedisStorage struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisStorage создаёт клиент Redis. Соединение открывается при первой команде.
// Встроенные повторы go-redis отключены: повторами управляет Store.
func NewRedisStorage(addr, password string, db int, timeout time.Duration) *RedisStorage {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   -1,
	})
	return &RedisStorage{client: client, timeout: timeout}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return redisError(r.client.Ping(ctx).Err())
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", redisError(err)
	}
	return value, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return redisError(r.client.Set(ctx, key, value, ttl).Err())
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

func redisError(err error) error {
	if err == nil {
		return nil
	}
	if isConnError(err) || errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}

// isConnError распознаёт сетевые ошибки и таймауты.
func isConnError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, context.DeadlineExceeded)
}
