package storage

import (
	"fmt"
	"time"
)

// Виды хранилищ.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendFile     = "file"
)

// Config описывает подключение к хранилищу.
type Config struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseDSN   string
	FilePath      string
	Timeout       time.Duration
	Attempts      int
	Delay         time.Duration
}

// Open создаёт клиент хранилища выбранного вида. Подключение ленивое.
func Open(cfg Config) (*Store, error) {
	var dial Dialer
	switch cfg.Backend {
	case BackendRedis, "":
		dial = func() (Backend, error) {
			return NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Timeout), nil
		}
	case BackendPostgres:
		dial = func() (Backend, error) {
			return NewPostgresStorage(cfg.DatabaseDSN, cfg.Timeout)
		}
	case BackendMemory:
		mem := NewMemoryStorage()
		dial = func() (Backend, error) { return mem, nil }
	case BackendFile:
		fs, err := NewFileStorage(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		dial = func() (Backend, error) { return fs, nil }
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	return NewStore(dial, Options{Attempts: cfg.Attempts, Delay: cfg.Delay}), nil
}
