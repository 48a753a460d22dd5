package ledger

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	bloomCapacity = 100000
	falsePositive = 0.01
)

// hashBloom tracks block content hashes so hash lookups can skip the
// linear store scan on a definite miss.
type hashBloom struct {
	mu sync.RWMutex
	b  *bloom.BloomFilter
}

func newHashBloom() *hashBloom {
	return &hashBloom{
		b: bloom.NewWithEstimates(bloomCapacity, falsePositive),
	}
}

func (h *hashBloom) add(hash string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.b.AddString(hash)
}

func (h *hashBloom) mightContain(hash string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.b.TestString(hash)
}
