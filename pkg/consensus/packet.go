// Package consensus implements the node-level consensus state
// machine: mempool management, block proposal, opinion tallying, and
// the commit/fetch-recovery cycle.
package consensus

import (
	"github.com/obelisklab/obelisksim/pkg/chain"
	"github.com/obelisklab/obelisksim/pkg/hash"
)

// Opinion is a node's declaration of which candidate block it
// considers authoritative for a given round.
type Opinion struct {
	NodeID   int
	Seq      int64
	BlockSha hash.Hash
}

// Packet is the sum type carried over links: exactly one of the four
// fields is set. It is copied by value across Link[Packet] queues, so
// it carries pointers to immutable chain artifacts rather than the
// artifacts themselves.
type Packet struct {
	Tx    *chain.Transaction
	Blk   *chain.Block
	Op    *Opinion
	Fetch *hash.Hash
}
