package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompute_Idempotent(t *testing.T) {
	c := New()
	calls := 0
	produce := func() (string, error) {
		calls++
		return "value", nil
	}

	first, err := GetOrCompute(c, Key("AAPL", "quote", ""), time.Minute, produce)
	require.NoError(t, err)
	second, err := GetOrCompute(c, Key("AAPL", "quote", ""), time.Minute, produce)
	require.NoError(t, err)

	assert.Equal(t, "value", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "producer must run only on the first call within ttl")
}

func TestGetOrCompute_Expiry(t *testing.T) {
	c := New()
	now := time.Now()
	c.now = func() time.Time { return now }

	calls := 0
	produce := func() (int, error) {
		calls++
		return calls, nil
	}

	v, err := GetOrCompute(c, "k", 15*time.Minute, produce)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	now = now.Add(14 * time.Minute)
	v, err = GetOrCompute(c, "k", 15*time.Minute, produce)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "entry still fresh")

	now = now.Add(2 * time.Minute)
	v, err = GetOrCompute(c, "k", 15*time.Minute, produce)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "expired entry must be recomputed")
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	calls := 0
	produce := func() (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "recovered", nil
	}

	_, err := GetOrCompute(c, "k", time.Minute, produce)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "failures must not be cached")

	v, err := GetOrCompute(c, "k", time.Minute, produce)
	require.NoError(t, err)
	assert.Equal(t, "recovered", v, "next call retries immediately")
}

func TestKey_DistinctOperationsAndWindows(t *testing.T) {
	keys := []string{
		Key("AAPL", "quote", ""),
		Key("AAPL", "history", "1mo"),
		Key("AAPL", "history", "3mo"),
		Key("AAPL", "signal", "6mo"),
		Key("MSFT", "quote", ""),
	}
	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "key %q collides", k)
		seen[k] = true
	}
}

func TestGetOrCompute_HitMissCallbacks(t *testing.T) {
	c := New()
	hits, misses := 0, 0
	c.OnHit = func() { hits++ }
	c.OnMiss = func() { misses++ }

	produce := func() (int, error) { return 7, nil }
	_, err := GetOrCompute(c, "k", time.Minute, produce)
	require.NoError(t, err)
	_, err = GetOrCompute(c, "k", time.Minute, produce)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestGetOrCompute_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := GetOrCompute(c, "shared", time.Minute, func() (int, error) {
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
