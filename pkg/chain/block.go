package chain

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/obelisklab/obelisksim/pkg/hash"
)

// Block is an ordered collection of transactions chained to a
// predecessor by hash. It is immutable once RecomputeHash has been
// called; callers must not mutate Txs or PrevBlock afterward.
type Block struct {
	Txs       []*Transaction `msgpack:"x"`
	PrevBlock hash.Hash      `msgpack:"p"`
	Merkle    hash.Hash      `msgpack:"m"`
	Sha       hash.Hash      `msgpack:"s"`
}

// RecomputeHash recomputes Merkle from the current Txs and Sha from
// PrevBlock||Merkle. Must be called after any mutation and before the
// block is treated as frozen.
func (b *Block) RecomputeHash() {
	leaves := make([]hash.Hash, len(b.Txs))
	for i, t := range b.Txs {
		leaves[i] = t.Hash()
	}
	b.Merkle = hash.MerkleRoot(leaves)

	var buf [2 * hash.Size]byte
	copy(buf[:hash.Size], b.PrevBlock[:])
	copy(buf[hash.Size:], b.Merkle[:])
	b.Sha = hash.Sum(buf[:])
}

// Hash returns the block's identity.
func (b *Block) Hash() hash.Hash {
	return b.Sha
}

// ID returns the content-addressed identity used as a map key and in
// diagnostics.
func (b *Block) ID() (BlockID, error) {
	return idFromHash(b.Sha)
}

// Valid checks the two structural invariants every block must satisfy:
// its merkle root matches its transactions, and its sha matches
// prev_block||merkle.
func (b *Block) Valid() bool {
	leaves := make([]hash.Hash, len(b.Txs))
	for i, t := range b.Txs {
		leaves[i] = t.Hash()
	}
	if hash.MerkleRoot(leaves) != b.Merkle {
		return false
	}

	var buf [2 * hash.Size]byte
	copy(buf[:hash.Size], b.PrevBlock[:])
	copy(buf[hash.Size:], b.Merkle[:])
	return hash.Sum(buf[:]) == b.Sha
}

// Marshal encodes the block with msgpack.
func (b *Block) Marshal() ([]byte, error) {
	d, err := msgpack.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling block")
	}
	return d, nil
}

// Unmarshal decodes a block previously produced by Marshal.
func (b *Block) Unmarshal(d []byte) error {
	if err := msgpack.Unmarshal(d, b); err != nil {
		return errors.Wrap(err, "unmarshaling block")
	}
	return nil
}
