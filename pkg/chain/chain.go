package chain

import (
	"github.com/pkg/errors"

	"github.com/obelisklab/obelisksim/pkg/hash"
)

var (
	// ErrPrevBlockMismatch is returned by Chain.Append when a
	// candidate block's PrevBlock does not equal the current tip's
	// hash. Per the protocol's benign-input policy, node-level callers
	// treat this as a silent drop rather than propagating the error.
	ErrPrevBlockMismatch = errors.New("block prev_block does not match chain tip")

	// ErrInvalidBlock is returned by Chain.Append when a block fails
	// Block.Valid.
	ErrInvalidBlock = errors.New("block fails hash invariants")
)

// Chain is a node's local, append-only sequence of committed blocks,
// starting with a genesis block.
type Chain struct {
	blocks []*Block
}

// NewChain returns a chain containing only the deterministic genesis
// block.
func NewChain() *Chain {
	return &Chain{blocks: []*Block{NewGenesisBlock()}}
}

// Last returns the chain's tip.
func (c *Chain) Last() *Block {
	return c.blocks[len(c.blocks)-1]
}

// Len returns the number of blocks, including genesis.
func (c *Chain) Len() int {
	return len(c.blocks)
}

// Blocks returns the chain's blocks in append order. The returned
// slice must not be mutated by the caller.
func (c *Chain) Blocks() []*Block {
	return c.blocks
}

// Append validates b against the chain's invariants and, if valid,
// appends it. It returns ErrPrevBlockMismatch or ErrInvalidBlock on
// rejection; callers in the consensus layer treat both as a silent
// drop.
func (c *Chain) Append(b *Block) error {
	if b.PrevBlock != c.Last().Sha {
		return ErrPrevBlockMismatch
	}
	if !b.Valid() {
		return ErrInvalidBlock
	}
	c.blocks = append(c.blocks, b)
	return nil
}

// Contains reports whether sha identifies a block already in the
// chain, and returns that block if so.
func (c *Chain) Contains(sha hash.Hash) (*Block, bool) {
	for _, b := range c.blocks {
		if b.Sha == sha {
			return b, true
		}
	}
	return nil, false
}
