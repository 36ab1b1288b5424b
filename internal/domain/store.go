package domain

// CacheStore is the disk cache the rest of the client browses through.
// Record numbers are 1-based; a false result means "not found" or "rejected",
// an error means the cache files can no longer be trusted.
type CacheStore interface {
	// === Lifecycle ===
	Refresh() error

	// === Payload (current listing) ===
	PayloadAdd(item *Item) (bool, error)
	PayloadGet(n int) (*Item, bool, error)
	PayloadGetType(n int) ItemType
	PayloadCount() int

	// === Playlist (playable items only) ===
	PlaylistAdd(item *Item) (bool, error)
	PlaylistGet(n int) (*Item, bool, error)
	PlaylistCount() int
}

// ProgressFunc reports loading progress.
// Called repeatedly while a listing is written: (50, 500), (100, 500), ...
type ProgressFunc func(loaded, total int)
