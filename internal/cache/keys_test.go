package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListingsQueryKey_OrderIndependent(t *testing.T) {
	a := ListingsQueryKey(map[string]any{"category": "vehicle", "limit": 20})
	b := ListingsQueryKey(map[string]any{"limit": 20, "category": "vehicle"})
	require.Equal(t, a, b)
}

func TestListingsQueryKey_DistinctFiltersDistinctKeys(t *testing.T) {
	a := ListingsQueryKey(map[string]any{"category": "vehicle", "limit": 20, "offset": 0})
	b := ListingsQueryKey(map[string]any{"category": "vehicle", "limit": 20, "offset": 20})
	require.NotEqual(t, a, b)

	c := ListingsQueryKey(map[string]any{"category": "realestate", "limit": 20, "offset": 0})
	require.NotEqual(t, a, c)
}

func TestIndividualKeys(t *testing.T) {
	require.Equal(t, "listing:l-1", ListingKey("l-1"))
	require.Equal(t, "conversations:u-1", ConversationsKey("u-1"))
	require.Equal(t, "messages:c-1", MessagesKey("c-1"))
	require.Equal(t, "favorites:u-1", FavoritesKey("u-1"))
	require.Equal(t, "user-listings:u-1", UserListingsKey("u-1"))
}

func TestListingKeyNotCaughtByQueryPrefix(t *testing.T) {
	// the collection namespace must never swallow individual-entity keys
	require.NotContains(t, ListingKey("x"), ListingsQueryPrefix)
}
