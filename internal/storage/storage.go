// Package storage реализует клиент удалённого key-value хранилища
// с ленивым подключением и ограниченным числом повторных попыток.
//
// Клиент различает два вида чтения:
//   - кэш (CacheGet/CacheSet) - best effort, ошибки хранилища поглощаются;
//   - авторитетное чтение (Get) - отсутствие ключа и недоступность хранилища
//     возвращаются как разные ошибки.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sol1corejz/scoring-api/internal/logger"
	"github.com/sol1corejz/scoring-api/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrConnection - хранилище недоступно.
	ErrConnection = errors.New("store connection error")
	// ErrKeyNotFound - ключа нет в хранилище.
	ErrKeyNotFound = errors.New("key not found")
)

// Значения по умолчанию для политики повторов.
const (
	DefaultAttempts = 100
	DefaultDelay    = 10 * time.Millisecond
)

// Backend - низкоуровневый доступ к хранилищу.
// Ошибки связи должны оборачивать ErrConnection, отсутствие ключа - ErrKeyNotFound.
type Backend interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// Dialer создаёт Backend при первом обращении к хранилищу.
type Dialer func() (Backend, error)

// Options - политика повторов: фиксированное число попыток с фиксированной паузой.
type Options struct {
	Attempts int
	Delay    time.Duration
}

// Store - клиент хранилища. Безопасен для конкурентного использования.
type Store struct {
	dial Dialer
	opts Options

	mu      sync.Mutex
	backend Backend

	// connecting объединяет конкурентные попытки подключения в одну.
	connecting singleflight.Group
}

// NewStore создаёт клиент. Подключение устанавливается при первом обращении.
func NewStore(dial Dialer, opts Options) *Store {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Store{dial: dial, opts: opts}
}

// conn возвращает установленное подключение или устанавливает новое.
// Мьютекс защищает только поле backend: подключение идёт без него,
// а конкурентные вызовы ждут одну общую попытку или отмены своего ctx.
func (s *Store) conn(ctx context.Context) (Backend, error) {
	if b := s.current(); b != nil {
		return b, nil
	}

	// общая попытка не должна обрываться из-за отмены запроса, который её начал
	attempt := context.WithoutCancel(ctx)
	ch := s.connecting.DoChan("conn", func() (any, error) {
		return s.connect(attempt)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("store connect: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Backend), nil
	}
}

func (s *Store) current() Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend
}

func (s *Store) connect(ctx context.Context) (Backend, error) {
	if b := s.current(); b != nil {
		return b, nil
	}

	b, err := s.dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if err := s.retry(ctx, "ping", func() error { return b.Ping(ctx) }); err != nil {
		_ = b.Close()
		return nil, err
	}

	logger.Log.Debug("store connection established")
	s.mu.Lock()
	s.backend = b
	s.mu.Unlock()
	return b, nil
}

// retry вызывает fn, пока она возвращает ошибку связи и не исчерпан лимит попыток.
// Между попытками выдерживается фиксированная пауза.
func (s *Store) retry(ctx context.Context, op string, fn func() error) error {
	attempts := s.opts.Attempts
	for {
		err := fn()
		if err == nil || !errors.Is(err, ErrConnection) {
			return err
		}

		attempts--
		logger.Log.Error("store connection error, reconnecting",
			zap.String("op", op),
			zap.Int("attempts_left", attempts),
			zap.Error(err),
		)
		if attempts <= 0 {
			metrics.StoreFailures.WithLabelValues(op).Inc()
			return fmt.Errorf("can't connect to store after %d attempts: %w", s.opts.Attempts, err)
		}
		metrics.StoreRetries.WithLabelValues(op).Inc()

		t := time.NewTimer(s.opts.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("store %s: %w", op, ctx.Err())
		case <-t.C:
		}
	}
}

// Ping проверяет доступность хранилища.
func (s *Store) Ping(ctx context.Context) error {
	b, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return s.retry(ctx, "ping", func() error { return b.Ping(ctx) })
}

// CacheGet читает значение из кэша. Любая ошибка хранилища считается промахом.
func (s *Store) CacheGet(ctx context.Context, key string) (string, bool) {
	value, err := s.get(ctx, "cache_get", key)
	switch {
	case err == nil:
		return value, true
	case errors.Is(err, ErrKeyNotFound):
		return "", false
	}
	logger.Log.Error("cache get failed", zap.String("key", key), zap.Error(err))
	return "", false
}

// CacheSet пишет значение в кэш с временем жизни ttl. Ошибки только логируются.
func (s *Store) CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	b, err := s.conn(ctx)
	if err == nil {
		err = s.retry(ctx, "cache_set", func() error { return b.Set(ctx, key, value, ttl) })
	}
	if err != nil {
		logger.Log.Error("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Get читает значение, которое обязано существовать.
// Возвращает ошибку, оборачивающую ErrKeyNotFound, если ключа нет,
// и ErrConnection, если хранилище недоступно после всех попыток.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.get(ctx, "get", key)
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set пишет значение без ограничения времени жизни.
func (s *Store) Set(ctx context.Context, key, value string) error {
	b, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return s.retry(ctx, "set", func() error { return b.Set(ctx, key, value, 0) })
}

func (s *Store) get(ctx context.Context, op, key string) (string, error) {
	b, err := s.conn(ctx)
	if err != nil {
		return "", err
	}

	var value string
	err = s.retry(ctx, op, func() error {
		var err error
		value, err = b.Get(ctx, key)
		return err
	})
	return value, err
}

// Close закрывает подключение. Следующее обращение подключится заново.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		return nil
	}
	err := s.backend.Close()
	s.backend = nil
	return err
}
