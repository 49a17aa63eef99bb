// Package persist provides the durable key/value store backing
// session state, recent files and preferences.
//
// Persistence is best-effort by design: callers treat a failed write
// as a non-event and keep the in-memory state authoritative. Keys are
// namespaced under a fixed prefix so the store can be shared with
// unrelated consumers.
package persist

// Namespace prefixes every key written by this application.
const Namespace = "glyphpad."

// Well-known keys.
const (
	KeyTabs        = "tabs"
	KeyRecentFiles = "recentFiles"
	KeyPreferences = "preferences"
)

// Store is a namespaced JSON key/value store.
type Store interface {
	// Get unmarshals the value for key into dest. The first return is
	// false when the key is absent.
	Get(key string, dest any) (bool, error)

	// Set marshals value and stores it under key.
	Set(key string, value any) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases the underlying storage.
	Close() error
}
