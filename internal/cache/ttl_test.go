package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/cardcycle/internal/cache"
)

func TestTTL_GetSet(t *testing.T) {
	c := cache.NewTTL[int](time.Hour, 0)

	_, ok := c.Get("usd")
	assert.False(t, ok)

	c.Set("usd", 25_000)

	got, ok := c.Get("usd")
	assert.True(t, ok)
	assert.Equal(t, 25_000, got)

	c.Set("usd", 25_400)

	got, _ = c.Get("usd")
	assert.Equal(t, 25_400, got)
	assert.Equal(t, 1, c.Len())

	c.Delete("usd")

	_, ok = c.Get("usd")
	assert.False(t, ok)
}

func TestTTL_Expiry(t *testing.T) {
	c := cache.NewTTL[string](20*time.Millisecond, 0)

	c.Set("eur", "27500")
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("eur")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestTTL_BackgroundCleanup(t *testing.T) {
	c := cache.NewTTL[int](10*time.Millisecond, 10*time.Millisecond)

	c.Set("jpy", 168)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}
