package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rs := NewRedisStorage(mr.Addr(), "", 0, time.Second)
	defer func() { _ = rs.Close() }()
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, rs.Ping(ctx))
	})

	t.Run("GetExisting", func(t *testing.T) {
		require.NoError(t, mr.Set("i:1", `["cars","pets"]`))
		v, err := rs.Get(ctx, "i:1")
		require.NoError(t, err)
		assert.Equal(t, `["cars","pets"]`, v)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := rs.Get(ctx, "i:missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("SetWithTTL", func(t *testing.T) {
		require.NoError(t, rs.Set(ctx, "uid:1", "3", time.Hour))
		assert.Equal(t, time.Hour, mr.TTL("uid:1"))

		mr.FastForward(time.Hour + time.Second)
		_, err := rs.Get(ctx, "uid:1")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("SetWithoutTTL", func(t *testing.T) {
		require.NoError(t, rs.Set(ctx, "i:2", `[]`, 0))
		assert.Equal(t, time.Duration(0), mr.TTL("i:2"))
	})

	t.Run("WrongType", func(t *testing.T) {
		_, err := mr.Lpush("list", "a")
		require.NoError(t, err)
		_, err = rs.Get(ctx, "list")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConnection)
		assert.NotErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestRedisStorageConnectionErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	rs := NewRedisStorage(addr, "", 0, 100*time.Millisecond)
	defer func() { _ = rs.Close() }()
	ctx := context.Background()

	assert.ErrorIs(t, rs.Ping(ctx), ErrConnection)
	_, err = rs.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, rs.Set(ctx, "k", "v", 0), ErrConnection)
}

func TestStoreOverRedisOutage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	require.NoError(t, mr.Set("i:1", `["books"]`))

	s := NewStore(func() (Backend, error) {
		return NewRedisStorage(mr.Addr(), "", 0, 100*time.Millisecond), nil
	}, Options{Attempts: 3, Delay: time.Millisecond})
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	v, err := s.Get(ctx, "i:1")
	require.NoError(t, err)
	assert.Equal(t, `["books"]`, v)

	// хранилище упало: кэш молча промахивается, строгое чтение возвращает ошибку связи
	mr.Close()

	_, ok := s.CacheGet(ctx, "uid:1")
	assert.False(t, ok)
	s.CacheSet(ctx, "uid:1", "1.5", time.Hour)

	_, err = s.Get(ctx, "i:1")
	assert.ErrorIs(t, err, ErrConnection)

	// после восстановления то же подключение снова работает
	require.NoError(t, mr.Restart())
	require.NoError(t, mr.Set("i:1", `["books"]`))
	v, err = s.Get(ctx, "i:1")
	require.NoError(t, err)
	assert.Equal(t, `["books"]`, v)
}
