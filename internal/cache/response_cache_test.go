package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock returns a clock function and a pointer that tests can advance.
func fakeClock() (func() time.Time, *time.Time) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return base }, &base
}

func TestResponseCache_FreshHit(t *testing.T) {
	c := New(Config{TTL: time.Minute})

	payload := map[string]any{"id": "l-1", "title": "Old bike"}
	c.Set(ListingKey("l-1"), payload)

	got, ok := c.Get(ListingKey("l-1"))
	require.True(t, ok)
	require.Equal(t, payload, got)
	require.Equal(t, 1, c.Len())
}

func TestResponseCache_MissOnAbsent(t *testing.T) {
	c := New(Config{TTL: time.Minute})
	_, ok := c.Get(ListingKey("nope"))
	require.False(t, ok)
}

func TestResponseCache_Expiry(t *testing.T) {
	clock, at := fakeClock()
	c := New(Config{TTL: time.Minute, Clock: clock})

	c.Set("listing:l-1", "v")
	got, ok := c.Get("listing:l-1")
	require.True(t, ok)
	require.Equal(t, "v", got)

	// one tick past the freshness horizon
	*at = at.Add(time.Minute + time.Nanosecond)
	_, ok = c.Get("listing:l-1")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())

	c.PurgeExpired()
	_, ok = c.Get("listing:l-1")
	require.False(t, ok)
}

func TestResponseCache_ZeroTTLNeverExpires(t *testing.T) {
	clock, at := fakeClock()
	c := New(Config{TTL: 0, Clock: clock})

	c.Set("k", 42)
	*at = at.Add(1000 * time.Hour)
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 42, got)
}

func TestResponseCache_SetOverwritesWholeEntry(t *testing.T) {
	clock, at := fakeClock()
	c := New(Config{TTL: time.Minute, Clock: clock})

	c.Set("k", "old")
	*at = at.Add(50 * time.Second)
	c.Set("k", "new")

	// the overwrite restamped storedAt, so the entry is fresh well past the
	// original horizon
	*at = at.Add(50 * time.Second)
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "new", got)
}

func TestResponseCache_DeleteIsScoped(t *testing.T) {
	c := New(Config{TTL: time.Minute})

	c.Set(ListingKey("l-1"), "a")
	c.Set(ListingKey("l-2"), "b")

	c.Delete(ListingKey("l-1"))
	_, ok := c.Get(ListingKey("l-1"))
	require.False(t, ok)

	got, ok := c.Get(ListingKey("l-2"))
	require.True(t, ok)
	require.Equal(t, "b", got)

	// deleting an absent key is a no-op
	c.Delete(ListingKey("l-1"))
}

func TestResponseCache_InvalidateByPrefix(t *testing.T) {
	c := New(Config{TTL: time.Minute})

	c.Set(ListingsQueryKey(map[string]any{"category": "vehicle", "limit": 20, "offset": 0}), "q1")
	c.Set(ListingsQueryKey(map[string]any{"category": "realestate", "limit": 20, "offset": 0}), "q2")
	c.Set(ListingsQueryKey(map[string]any{"search": "bike", "limit": 5, "offset": 0}), "q3")
	c.Set(ListingKey("l-1"), "individual")

	removed := c.InvalidateByPrefix(ListingsQueryPrefix)
	require.Equal(t, 3, removed)

	// every query variant is gone
	_, ok := c.Get(ListingsQueryKey(map[string]any{"category": "vehicle", "limit": 20, "offset": 0}))
	require.False(t, ok)
	_, ok = c.Get(ListingsQueryKey(map[string]any{"search": "bike", "limit": 5, "offset": 0}))
	require.False(t, ok)

	// individual-entity keys survive: "listing:" does not match "listings:"
	got, ok := c.Get(ListingKey("l-1"))
	require.True(t, ok)
	require.Equal(t, "individual", got)
}

func TestResponseCache_Clear(t *testing.T) {
	c := New(Config{TTL: time.Minute})
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestResponseCache_InstancesAreIndependent(t *testing.T) {
	a := New(Config{TTL: time.Minute})
	b := New(Config{TTL: time.Minute})

	a.Set("k", "from-a")
	_, ok := b.Get("k")
	require.False(t, ok)
}
