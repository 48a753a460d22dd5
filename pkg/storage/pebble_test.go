package storage

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPebbleEmptyHeight(t *testing.T) {
	s, err := OpenMem()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	h, err := s.Height()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, int64(-1), h)
}

func TestPebblePutGet(t *testing.T) {
	s, err := OpenMem()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Put(0, []byte("genesis")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(1, []byte("one")); err != nil {
		t.Fatal(err)
	}

	v, err := s.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte("one"), v)

	h, err := s.Height()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(1), h)

	_, err = s.Get(9)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPebbleScans(t *testing.T) {
	s, err := OpenMem()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for i, v := range [][]byte{[]byte("aa"), []byte("ab"), []byte("ba")} {
		if err := s.Put(uint64(i), v); err != nil {
			t.Fatal(err)
		}
	}

	first, err := s.ScanFirst(func(v []byte) bool { return bytes.HasPrefix(v, []byte("a")) })
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte("aa"), first)

	all, err := s.ScanAll(func(v []byte) bool { return bytes.HasPrefix(v, []byte("a")) })
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, [][]byte{[]byte("aa"), []byte("ab")}, all)

	_, err = s.ScanFirst(func(v []byte) bool { return false })
	assert.True(t, errors.Is(err, ErrNotFound))

	none, err := s.ScanAll(func(v []byte) bool { return false })
	if err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, none)
}
