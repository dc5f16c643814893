package cache

// Cache defines the response-cache API used by the HTTP handlers.
// Values are opaque response payloads; absence is signaled by the bool,
// never by a nil value.
type Cache interface {
	// Get returns the value and whether it was present and not expired.
	Get(key string) (any, bool)

	// Set stores the value stamped with the current time and the configured TTL.
	// It overwrites any existing entry for the key.
	Set(key string, value any)

	// Delete removes a key if present.
	Delete(key string)

	// InvalidateByPrefix removes every entry whose key starts with prefix
	// and returns how many entries were removed.
	InvalidateByPrefix(prefix string) int

	// Len returns the number of non-expired items currently stored.
	Len() int

	// Clear removes all entries.
	Clear()

	// PurgeExpired scans and removes expired entries.
	PurgeExpired()
}
