package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obelisklab/obelisksim/pkg/hash"
)

func TestBlockRecomputeHash(t *testing.T) {
	tx := NewTransaction(1)
	b := &Block{Txs: []*Transaction{tx}}
	b.RecomputeHash()

	assert.Equal(t, hash.MerkleRoot([]hash.Hash{tx.Hash()}), b.Merkle)
	assert.True(t, b.Valid())
}

func TestBlockValidRejectsTamperedMerkle(t *testing.T) {
	tx := NewTransaction(1)
	b := &Block{Txs: []*Transaction{tx}}
	b.RecomputeHash()

	b.Merkle[0] ^= 0xff
	assert.False(t, b.Valid())
}

func TestGenesisBlockDeterministic(t *testing.T) {
	a := NewGenesisBlock()
	b := NewGenesisBlock()
	assert.Equal(t, a.Sha, b.Sha)
	assert.True(t, a.PrevBlock.IsZero())
	assert.True(t, a.Valid())
}

func TestBlockMarshalRoundTrip(t *testing.T) {
	b := NewGenesisBlock()

	d, err := b.Marshal()
	require.NoError(t, err)

	rb := &Block{}
	require.NoError(t, rb.Unmarshal(d))

	assert.Equal(t, b, rb)
}

func TestChainAppendEnforcesPrevBlock(t *testing.T) {
	c := NewChain()
	genesis := c.Last()

	good := &Block{PrevBlock: genesis.Sha, Txs: []*Transaction{NewTransaction(2)}}
	good.RecomputeHash()
	require.NoError(t, c.Append(good))
	assert.Equal(t, 2, c.Len())

	bad := &Block{PrevBlock: hash.Sum([]byte("wrong")), Txs: []*Transaction{NewTransaction(3)}}
	bad.RecomputeHash()
	assert.ErrorIs(t, c.Append(bad), ErrPrevBlockMismatch)
	assert.Equal(t, 2, c.Len())
}

func TestChainContains(t *testing.T) {
	c := NewChain()
	b, ok := c.Contains(c.Last().Sha)
	require.True(t, ok)
	assert.Equal(t, c.Last(), b)

	_, ok = c.Contains(hash.Sum([]byte("nope")))
	assert.False(t, ok)
}
