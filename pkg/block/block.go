package block

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// GenesisPreviousHash is the previous-hash sentinel carried by the
	// block at height 0.
	GenesisPreviousHash = "none"

	genesisStory = "First block in the chain - This is the Genesis block"
)

// Star is a single star claim. Story holds the hex encoding of the
// original story bytes.
type Star struct {
	RA    string `msgpack:"ra" json:"ra"`
	Dec   string `msgpack:"dec" json:"dec"`
	Story string `msgpack:"story" json:"story"`
}

// DecodeStory returns the story bytes decoded from their hex form.
func (s Star) DecodeStory() (string, error) {
	d, err := hex.DecodeString(s.Story)
	if err != nil {
		return "", errors.Wrap(err, "decoding story hex")
	}

	return string(d), nil
}

type Body struct {
	Address string `msgpack:"address" json:"address"`
	Star    Star   `msgpack:"star" json:"star"`
}

// Block is one immutable ledger entry. The hash covers the canonical
// msgpack serialization of the block with Hash itself cleared.
type Block struct {
	Height            uint64 `msgpack:"height" json:"height"`
	Time              int64  `msgpack:"time" json:"time"`
	Body              Body   `msgpack:"body" json:"body"`
	Hash              string `msgpack:"hash" json:"hash"`
	PreviousBlockHash string `msgpack:"previousBlockHash" json:"previousBlockHash"`
}

// Genesis constructs the sealed block at height 0.
func Genesis(ts int64) *Block {
	b := &Block{
		Height: 0,
		Time:   ts,
		Body: Body{
			Star: Star{Story: hex.EncodeToString([]byte(genesisStory))},
		},
		PreviousBlockHash: GenesisPreviousHash,
	}
	b.Seal()

	return b
}

// ComputeHash hashes the block as if its Hash field were empty.
func (b *Block) ComputeHash() (string, error) {
	shadow := *b
	shadow.Hash = ""

	d, err := msgpack.Marshal(&shadow)
	if err != nil {
		return "", errors.Wrap(err, "marshaling block for hashing")
	}

	h := sha256.Sum256(d)

	return hex.EncodeToString(h[:]), nil
}

// Seal stamps the block's content hash. The block must not be mutated
// afterwards.
func (b *Block) Seal() error {
	h, err := b.ComputeHash()
	if err != nil {
		return err
	}

	b.Hash = h

	return nil
}

// Verify recomputes the content hash and compares it against the stored
// one. A mismatch signals tampering or corruption.
func (b *Block) Verify() (bool, error) {
	h, err := b.ComputeHash()
	if err != nil {
		return false, err
	}

	return h == b.Hash, nil
}

func (b *Block) Marshal() ([]byte, error) {
	d, err := msgpack.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling block")
	}

	return d, nil
}

func (b *Block) Unmarshal(d []byte) error {
	if err := msgpack.Unmarshal(d, b); err != nil {
		return errors.Wrap(err, "unmarshaling block")
	}

	return nil
}
