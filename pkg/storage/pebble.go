package storage

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
)

const (
	cacheSize = 1 << 20 * 100
)

var (
	_ Store = (*Pebble)(nil)

	syncWrites = &pebble.WriteOptions{Sync: true}
)

// Pebble stores one serialized block per height. Pebble itself holds an
// exclusive lock on its directory, so exactly one Pebble must exist per
// data directory for the life of the process; the node opens it once and
// injects the handle into every consumer.
type Pebble struct {
	db *pebble.DB
}

// Open opens the store at dir, creating it if needed.
func Open(dir string) (*Pebble, error) {
	c := pebble.NewCache(cacheSize)
	defer c.Unref()

	db, err := pebble.Open(dir, &pebble.Options{Cache: c})
	if err != nil {
		return nil, errors.Wrap(err, "opening block store")
	}

	return &Pebble{db: db}, nil
}

// OpenMem opens a store backed by an in-memory filesystem, for tests.
func OpenMem() (*Pebble, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, errors.Wrap(err, "opening in-memory block store")
	}

	return &Pebble{db: db}, nil
}

func heightKey(h uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, h)
	return k
}

func (p *Pebble) Put(height uint64, value []byte) error {
	if err := p.db.Set(heightKey(height), value, syncWrites); err != nil {
		return errors.Wrap(err, "storing block")
	}

	return nil
}

func (p *Pebble) Get(height uint64) ([]byte, error) {
	d, done, err := p.db.Get(heightKey(height))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "reading block")
	}
	defer done.Close()

	v := make([]byte, len(d))
	copy(v, d)

	return v, nil
}

func (p *Pebble) Height() (int64, error) {
	iter := p.db.NewIter(nil)
	defer iter.Close()

	h := int64(-1)
	for iter.First(); iter.Valid(); iter.Next() {
		h++
	}

	if err := iter.Error(); err != nil {
		return -1, errors.Wrap(err, "scanning store height")
	}

	return h, nil
}

func (p *Pebble) ScanFirst(pred func(value []byte) bool) ([]byte, error) {
	iter := p.db.NewIter(nil)
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if pred(iter.Value()) {
			v := make([]byte, len(iter.Value()))
			copy(v, iter.Value())
			return v, nil
		}
	}

	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "scanning store")
	}

	return nil, ErrNotFound
}

func (p *Pebble) ScanAll(pred func(value []byte) bool) ([][]byte, error) {
	iter := p.db.NewIter(nil)
	defer iter.Close()

	matches := [][]byte{}
	for iter.First(); iter.Valid(); iter.Next() {
		if pred(iter.Value()) {
			v := make([]byte, len(iter.Value()))
			copy(v, iter.Value())
			matches = append(matches, v)
		}
	}

	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "scanning store")
	}

	return matches, nil
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
