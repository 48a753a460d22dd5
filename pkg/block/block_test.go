package block

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenesis(t *testing.T) {
	g := Genesis(1541438400)

	assert.Equal(t, uint64(0), g.Height)
	assert.Equal(t, GenesisPreviousHash, g.PreviousBlockHash)
	assert.NotEmpty(t, g.Hash)

	ok, err := g.Verify()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
}

func TestSealVerify(t *testing.T) {
	b := &Block{
		Height: 1,
		Time:   1541438401,
		Body: Body{
			Address: "0xabc",
			Star: Star{
				RA:    "16h 29m 1.0s",
				Dec:   "-26 29 24.9",
				Story: hex.EncodeToString([]byte("Found star using https://www.google.com/sky/")),
			},
		},
		PreviousBlockHash: "aaaa",
	}

	if err := b.Seal(); err != nil {
		t.Fatal(err)
	}

	ok, err := b.Verify()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)

	// any mutation after sealing must be detectable
	b.Body.Star.Story = hex.EncodeToString([]byte("a different story"))

	ok, err = b.Verify()
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, ok)
}

func TestMarshalRoundTrip(t *testing.T) {
	b := Genesis(1541438400)

	d, err := b.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	got := &Block{}
	if err := got.Unmarshal(d); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, b, got)

	ok, err := got.Verify()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
}

func TestDecodeStory(t *testing.T) {
	story := "Found star using https://www.google.com/sky/"

	s := Star{Story: hex.EncodeToString([]byte(story))}

	decoded, err := s.DecodeStory()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, story, decoded)
}
