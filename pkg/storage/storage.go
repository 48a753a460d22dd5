package storage

// Store is an ordered key-value store keyed by block height. Scans walk
// entries in ascending key order; no secondary index exists, so hash and
// address lookups are linear over the store.
type Store interface {
	// Put durably writes the value at the given height.
	Put(height uint64, value []byte) error

	// Get returns the value stored at the given height, or ErrNotFound.
	Get(height uint64) ([]byte, error)

	// Height returns the highest stored height, or -1 for an empty store.
	Height() (int64, error)

	// ScanFirst returns the first value in key order matching pred, or
	// ErrNotFound if none match.
	ScanFirst(pred func(value []byte) bool) ([]byte, error)

	// ScanAll returns every value matching pred in key order. No matches
	// yields an empty slice, not an error.
	ScanAll(pred func(value []byte) bool) ([][]byte, error)

	Close() error
}
