package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/starchain/pkg/block"
	"github.com/tcfw/starchain/pkg/storage"
)

// Ledger owns block creation, height and hash linkage, and chain
// integrity checks over a single Store.
type Ledger struct {
	store storage.Store
	clock clock.Clock
	log   *logrus.Entry

	// serializes height reads against the subsequent write
	appendMu sync.Mutex

	hashes *hashBloom
}

type Option func(*Ledger)

func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

func WithLogger(log *logrus.Entry) Option {
	return func(l *Ledger) { l.log = log }
}

func New(s storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  s,
		clock:  clock.New(),
		log:    logrus.NewEntry(logrus.StandardLogger()),
		hashes: newHashBloom(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Initialize seeds the genesis block into an empty store and rebuilds
// the hash filter from an existing one. It must complete before any
// other ledger operation is invoked.
func (l *Ledger) Initialize(ctx context.Context) error {
	l.appendMu.Lock()
	defer l.appendMu.Unlock()

	height, err := l.store.Height()
	if err != nil {
		return errors.Wrap(err, "reading chain height")
	}

	if height == -1 {
		g := block.Genesis(l.clock.Now().Unix())
		if err := l.persist(g); err != nil {
			return errors.Wrap(err, "appending genesis block")
		}

		l.log.WithField("hash", g.Hash).Info("added genesis block to the chain")

		return nil
	}

	// warm the hash filter from the existing chain
	for i := int64(0); i <= height; i++ {
		b, err := l.blockByHeight(uint64(i))
		if err != nil {
			return errors.Wrap(err, "rebuilding hash filter")
		}
		l.hashes.add(b.Hash)
	}

	return nil
}

// Append builds, links, seals and durably stores a new block carrying
// the given body. The store is untouched on failure.
func (l *Ledger) Append(ctx context.Context, body block.Body) (*block.Block, error) {
	l.appendMu.Lock()
	defer l.appendMu.Unlock()

	height, err := l.store.Height()
	if err != nil {
		return nil, errors.Wrap(err, "reading chain height")
	}
	if height < 0 {
		return nil, errors.New("ledger not initialized")
	}

	prev, err := l.blockByHeight(uint64(height))
	if err != nil {
		return nil, errors.Wrap(err, "reading chain tip")
	}

	b := &block.Block{
		Height:            uint64(height) + 1,
		Time:              l.clock.Now().Unix(),
		Body:              body,
		PreviousBlockHash: prev.Hash,
	}

	if err := l.persist(b); err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"height":  b.Height,
		"address": b.Body.Address,
	}).Info("appended block")

	return b, nil
}

func (l *Ledger) persist(b *block.Block) error {
	if err := b.Seal(); err != nil {
		return err
	}

	d, err := b.Marshal()
	if err != nil {
		return err
	}

	if err := l.store.Put(b.Height, d); err != nil {
		return errors.Wrap(err, "storing block")
	}

	l.hashes.add(b.Hash)

	return nil
}

// BlockByHeight returns the block at the given height, or
// storage.ErrNotFound.
func (l *Ledger) BlockByHeight(ctx context.Context, height uint64) (*block.Block, error) {
	return l.blockByHeight(height)
}

func (l *Ledger) blockByHeight(height uint64) (*block.Block, error) {
	d, err := l.store.Get(height)
	if err != nil {
		return nil, err
	}

	b := &block.Block{}
	if err := b.Unmarshal(d); err != nil {
		return nil, err
	}

	return b, nil
}

// BlockByHash linearly scans the chain for the first block with the
// given content hash. The hash filter short-circuits definite misses.
func (l *Ledger) BlockByHash(ctx context.Context, hash string) (*block.Block, error) {
	if !l.hashes.mightContain(hash) {
		return nil, storage.ErrNotFound
	}

	d, err := l.store.ScanFirst(func(v []byte) bool {
		b := &block.Block{}
		if err := b.Unmarshal(v); err != nil {
			return false
		}
		return b.Hash == hash
	})
	if err != nil {
		return nil, err
	}

	b := &block.Block{}
	if err := b.Unmarshal(d); err != nil {
		return nil, err
	}

	return b, nil
}

// BlocksByAddress returns every block owned by the given address in
// ascending height order. No matches yields an empty slice.
func (l *Ledger) BlocksByAddress(ctx context.Context, address string) ([]*block.Block, error) {
	ds, err := l.store.ScanAll(func(v []byte) bool {
		b := &block.Block{}
		if err := b.Unmarshal(v); err != nil {
			return false
		}
		return b.Body.Address == address
	})
	if err != nil {
		return nil, err
	}

	blocks := make([]*block.Block, 0, len(ds))
	for _, d := range ds {
		b := &block.Block{}
		if err := b.Unmarshal(d); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	return blocks, nil
}

// ValidateBlock recomputes the content hash of the block at the given
// height and compares it against the stored one.
func (l *Ledger) ValidateBlock(ctx context.Context, height uint64) (bool, error) {
	b, err := l.blockByHeight(height)
	if err != nil {
		return false, err
	}

	return b.Verify()
}

// ValidateChain walks every block and every adjacent pair, including
// the final one, returning the heights at which either the content
// hash or the previous-hash link fails.
func (l *Ledger) ValidateChain(ctx context.Context) ([]uint64, error) {
	height, err := l.store.Height()
	if err != nil {
		return nil, errors.Wrap(err, "reading chain height")
	}
	if height < 0 {
		return nil, nil
	}

	bad := map[uint64]struct{}{}

	prev, err := l.blockByHeight(0)
	if err != nil {
		return nil, err
	}

	for i := int64(0); i <= height; i++ {
		cur := prev
		if i > 0 {
			cur, err = l.blockByHeight(uint64(i))
			if err != nil {
				return nil, err
			}

			if cur.PreviousBlockHash != prev.Hash {
				bad[uint64(i)] = struct{}{}
			}
		}

		ok, err := cur.Verify()
		if err != nil {
			return nil, err
		}
		if !ok {
			bad[uint64(i)] = struct{}{}
		}

		prev = cur
	}

	heights := make([]uint64, 0, len(bad))
	for h := range bad {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	if len(heights) > 0 {
		l.log.WithField("heights", heights).Warn("chain validation failures")
	}

	return heights, nil
}
