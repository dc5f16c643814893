package cache

import (
	"encoding/json"
)

// Cache key construction lives in one place so keys never drift between the
// handlers that read them and the handlers that invalidate them.
//
// Individual resources use "<type>:<id>". Filtered collections use
// "listings:<canonical-JSON>", where the filter object is marshaled as a map
// so key order is always sorted and semantically identical queries share
// one key.

const (
	// ListingsQueryPrefix is the namespace for all filtered listing queries.
	ListingsQueryPrefix = "listings:"
)

// ListingKey identifies a single listing.
func ListingKey(id string) string { return "listing:" + id }

// ConversationKey identifies a single conversation.
func ConversationKey(id string) string { return "conversation:" + id }

// ConversationsKey identifies one user's conversation list.
func ConversationsKey(userID string) string { return "conversations:" + userID }

// MessagesKey identifies the message list of one conversation.
func MessagesKey(conversationID string) string { return "messages:" + conversationID }

// FavoritesKey identifies one user's favorites list.
func FavoritesKey(userID string) string { return "favorites:" + userID }

// UserListingsKey identifies one user's own listings.
func UserListingsKey(userID string) string { return "user-listings:" + userID }

// ListingsQueryKey identifies a filtered/paginated listings query.
// encoding/json marshals map keys in sorted order, which makes the key
// canonical regardless of how the filter map was built.
func ListingsQueryKey(filters map[string]any) string {
	b, err := json.Marshal(filters)
	if err != nil {
		// Filters are plain strings and ints; this cannot fail in practice.
		return ListingsQueryPrefix + "invalid"
	}
	return ListingsQueryPrefix + string(b)
}
