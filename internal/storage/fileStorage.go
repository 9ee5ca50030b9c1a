package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sol1corejz/scoring-api/internal/file"
)

// FileStorage - Backend в памяти, который дописывает значения без TTL
// в журнал JSON Lines и восстанавливает их при запуске. Журнал удобно
// использовать, чтобы заранее загрузить интересы клиентов.
type FileStorage struct {
	*MemoryStorage

	mu       sync.Mutex
	producer *file.Producer
}

// NewFileStorage восстанавливает значения из журнала. Отсутствующий файл создаётся.
func NewFileStorage(filename string) (*FileStorage, error) {
	mem := NewMemoryStorage()
	if err := replay(filename, mem); err != nil {
		return nil, err
	}

	producer, err := file.NewProducer(filename)
	if err != nil {
		return nil, err
	}
	return &FileStorage{MemoryStorage: mem, producer: producer}, nil
}

func replay(filename string, mem *MemoryStorage) error {
	consumer, err := file.NewConsumer(filename)
	if err != nil {
		return err
	}
	defer consumer.Close()

	for line := 1; ; line++ {
		event, err := consumer.ReadEvent()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: record %d: %w", filename, line, err)
		}
		mem.data[event.Key] = memoryItem{value: event.Value}
	}
}

// Set сохраняет значение в памяти; значения без TTL попадают и в журнал.
func (fs *FileStorage) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := fs.MemoryStorage.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if ttl > 0 {
		return nil
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.producer.WriteEvent(&file.Event{Key: key, Value: value})
}

func (fs *FileStorage) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.producer.Close()
}
