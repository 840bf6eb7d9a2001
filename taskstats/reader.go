package taskstats

// Reader provides read access to a pinned stats map. Records are written by
// the in-kernel handler with no synchronization against readers, so every
// snapshot is best-effort: individual fields may be mid-update.
type Reader interface {
	// Snapshot reads all entries, sorted by task ID.
	Snapshot() ([]Entry, error)
	// Close releases the map handle. The pinned map itself is unaffected.
	Close() error
}
