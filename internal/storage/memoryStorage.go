package storage

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// MemoryStorage - Backend в памяти процесса. Подходит для разработки и тестов.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]memoryItem
	now  func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string]memoryItem),
		now:  time.Now,
	}
}

func (ms *MemoryStorage) Ping(context.Context) error {
	return nil
}

func (ms *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, found := ms.data[key]
	if !found || (!item.expiresAt.IsZero() && !ms.now().Before(item.expiresAt)) {
		return "", ErrKeyNotFound
	}
	return item.value, nil
}

func (ms *MemoryStorage) Set(_ context.Context, key, value string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = ms.now().Add(ttl)
	}
	ms.data[key] = item
	return nil
}

func (ms *MemoryStorage) Close() error {
	return nil
}
