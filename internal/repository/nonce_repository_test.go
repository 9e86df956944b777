package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryNonceRepositoryRejectsReplay(t *testing.T) {
	repo := NewMemoryNonceRepository()

	ok, err := repo.Consume(context.Background(), "abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(context.Background(), "abc", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Consume(context.Background(), "def", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryNonceRepositoryPrunesExpired(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryNonceRepository()
	repo.now = func() time.Time { return now }

	_, err := repo.Consume(context.Background(), "old", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, repo.Len())

	now = now.Add(2 * time.Minute)
	ok, err := repo.Consume(context.Background(), "fresh", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, repo.Len())

	ok, err = repo.Consume(context.Background(), "old", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryNonceRepositoryConcurrentConsume(t *testing.T) {
	repo := NewMemoryNonceRepository()
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Consume(context.Background(), "shared", time.Hour)
			if err == nil && ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
}

func TestNonceRepositoryWithoutClient(t *testing.T) {
	repo := NewNonceRepository(nil, nil)
	ok, err := repo.Consume(context.Background(), "abc", time.Hour)
	require.Error(t, err)
	assert.False(t, ok)
}
