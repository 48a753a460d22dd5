package storage

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMemStore(t *testing.T) {
	m := NewMemStore()

	h, err := m.Height()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(-1), h)

	if err := m.Put(0, []byte("genesis")); err != nil {
		t.Fatal(err)
	}

	v, err := m.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte("genesis"), v)

	_, err = m.Get(1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemStoreReadsDetached(t *testing.T) {
	m := NewMemStore()

	if err := m.Put(0, []byte("genesis")); err != nil {
		t.Fatal(err)
	}

	// mutating a returned value must not reach the store
	v, err := m.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	v[0] = 'X'

	first, err := m.ScanFirst(func([]byte) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	first[0] = 'Y'

	all, err := m.ScanAll(func([]byte) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	all[0][0] = 'Z'

	again, err := m.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte("genesis"), again)
}

func TestMemStoreScanOrder(t *testing.T) {
	m := NewMemStore()

	// inserted out of key order
	if err := m.Put(2, []byte("c")); err != nil {
		t.Fatal(err)
	}
	if err := m.Put(0, []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := m.Put(1, []byte("b")); err != nil {
		t.Fatal(err)
	}

	all, err := m.ScanAll(func(v []byte) bool { return !bytes.Equal(v, []byte("b")) })
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, [][]byte{[]byte("a"), []byte("c")}, all)
}
