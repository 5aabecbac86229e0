package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateResolveDelete(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, "bob@example.com")
	require.NoError(t, err)

	email, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", email)

	require.NoError(t, store.Delete(ctx, token))
	require.NoError(t, store.Delete(ctx, token))

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	token, err := store.Create(context.Background(), "bob@example.com")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	_, err = store.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ConcurrentDisjointKeys(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	tokens := make([]string, 32)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := store.Create(ctx, "user@example.com")
			assert.NoError(t, err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		assert.False(t, seen[token], "duplicate token issued")
		seen[token] = true

		email, err := store.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", email)
	}
}
