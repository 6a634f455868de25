package consensus

import (
	"sort"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/obelisklab/obelisksim/internal/logging"
	"github.com/obelisklab/obelisksim/pkg/chain"
	"github.com/obelisklab/obelisksim/pkg/hash"
	"github.com/obelisklab/obelisksim/pkg/kernel"
)

const (
	bloomEstimatedTxs  = 1 << 16
	bloomFalsePositive = 0.01
	txSeedRandIntUpper = 1 << 30
)

// Node is a single participant in the gossip consensus protocol: it
// embeds kernel.Base[Packet] for mesh membership and broadcast, and
// layers the mempool/chain/opinion state machine described in spec
// §4.F on top of it. A Node is both a kernel.Component (stepped once
// per tick) and a kernel.PacketHandler[Packet] (invoked on delivery).
type Node struct {
	*kernel.Base[Packet]

	engine     *kernel.Engine
	id         int
	observer   bool
	blocksteps int64
	txsteps    int64
	quorum     int

	mu sync.Mutex

	currentStep int64

	mempool     []*chain.Transaction
	mempoolSeen map[hash.Hash]struct{}
	committed   *bloom.BloomFilter
	chainState  *chain.Chain

	currentBlock *chain.Block
	curSeq       int64
	opinions     map[int]*Opinion

	awaitingWinner bool
	curWinner      hash.Hash

	lastBlockStep int64
	lastTxStep    int64
}

// NewNode returns a Node identified by id, wired to engine but not yet
// connected to any peer or registered as a Component — the caller
// (ordinarily pkg/topology) does both. blocksteps and txsteps are the
// node's block-proposal and transaction-emission cadences in ticks;
// quorum is Z, the number of current-round opinions (this node's own
// included) required to tally.
func NewNode(engine *kernel.Engine, id int, blocksteps, txsteps int64, quorum int, observer bool) *Node {
	n := &Node{
		engine:      engine,
		id:          id,
		observer:    observer,
		blocksteps:  blocksteps,
		txsteps:     txsteps,
		quorum:      quorum,
		mempoolSeen: make(map[hash.Hash]struct{}),
		committed:   bloom.NewWithEstimates(bloomEstimatedTxs, bloomFalsePositive),
		chainState:  chain.NewChain(),
		curSeq:      -1,
		opinions:    make(map[int]*Opinion),
	}
	n.Base = kernel.NewBase[Packet](engine, n)
	n.addToFilterLocked(n.chainState.Last())
	return n
}

// ID returns the node's identifier, used as the map key in opinion
// tallies and in diagnostics.
func (n *Node) ID() int {
	return n.id
}

// Chain exposes the node's local chain view, read-only by convention.
func (n *Node) Chain() *chain.Chain {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chainState
}

// SetCurrentStep implements kernel.Component.
func (n *Node) SetCurrentStep(step int64) {
	n.mu.Lock()
	n.currentStep = step
	n.mu.Unlock()
}

// Step implements kernel.Component: on the configured cadences, it
// proposes a candidate block and/or emits a fresh transaction, then
// tallies if enough opinions for the current round have arrived.
func (n *Node) Step() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.currentStep-n.lastBlockStep > n.blocksteps {
		n.lastBlockStep = n.currentStep
		n.createBlockLocked()
	}
	if n.currentStep-n.lastTxStep > n.txsteps {
		n.lastTxStep = n.currentStep
		seed := int64(n.engine.RandInt(0, txSeedRandIntUpper))
		n.addTxLocked(chain.NewTransaction(seed))
	}
	if n.curSeq >= 0 && len(n.opinions) >= n.quorum {
		n.tallyLocked()
	}
}

// PacketCallback implements kernel.PacketHandler[Packet]; malformed or
// stale packets are dropped silently rather than propagated as errors.
func (n *Node) PacketCallback(pkt Packet) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case pkt.Tx != nil:
		n.addTxLocked(pkt.Tx)
	case pkt.Op != nil:
		n.acceptOpinionLocked(pkt.Op)
	case pkt.Blk != nil:
		n.acceptBlockLocked(pkt.Blk)
	case pkt.Fetch != nil:
		n.serveFetchLocked(*pkt.Fetch)
	}
}

// hasTxLocked reports whether t is already known to this node, either
// still pending in the mempool or already committed to its chain. The
// bloom filter gives a fast negative for the committed case; a
// positive triggers a definitive scan, since bloom filters never
// false-negative but may false-positive.
func (n *Node) hasTxLocked(t *chain.Transaction) bool {
	h := t.Hash()
	if _, ok := n.mempoolSeen[h]; ok {
		return true
	}

	id, err := t.ID()
	if err != nil || !n.committed.Test(id.Bytes()) {
		return false
	}
	for _, b := range n.chainState.Blocks() {
		for _, bt := range b.Txs {
			if bt.Hash() == h {
				return true
			}
		}
	}
	return false
}

// addTxLocked adds t to the mempool if unseen and rebroadcasts it,
// whether t originated locally (from Step) or from a peer (from
// PacketCallback) — both paths funnel through here, matching the
// source's single addTx entry point.
func (n *Node) addTxLocked(t *chain.Transaction) {
	if n.hasTxLocked(t) {
		return
	}
	n.mempool = append(n.mempool, t)
	n.mempoolSeen[t.Hash()] = struct{}{}
	n.SendPacket(Packet{Tx: t})
}

// createBlockLocked stages the entire current mempool into a candidate
// block for the round computed from the current step, broadcasts this
// node's own opinion of it, and clears the mempool. A no-op if the
// mempool is empty, matching the source (an empty block carries no
// useful opinion).
func (n *Node) createBlockLocked() {
	if len(n.mempool) == 0 {
		return
	}

	sort.Slice(n.mempool, func(i, j int) bool { return n.mempool[i].Less(n.mempool[j]) })

	b := &chain.Block{Txs: n.mempool, PrevBlock: n.chainState.Last().Sha}
	b.RecomputeHash()

	n.currentBlock = b
	n.curSeq = n.currentStep / n.blocksteps
	n.mempool = nil
	n.mempoolSeen = make(map[hash.Hash]struct{})

	op := &Opinion{NodeID: n.id, Seq: n.curSeq, BlockSha: b.Sha}
	n.opinions[n.id] = op
	n.SendPacket(Packet{Op: op})
}

// acceptOpinionLocked records a peer's opinion for the node's current
// round and rebroadcasts it. Opinions received while the node has no
// candidate of its own (curSeq < 0), for a round other than the
// node's current one, or a repeat from a node already on record, are
// dropped silently.
func (n *Node) acceptOpinionLocked(op *Opinion) {
	if n.curSeq < 0 || op.Seq != n.curSeq {
		return
	}
	if _, seen := n.opinions[op.NodeID]; seen {
		return
	}
	n.opinions[op.NodeID] = op
	n.SendPacket(Packet{Op: op})
}

// acceptBlockLocked appends blk to the chain if it is unseen and
// chains validly onto the tip, rebroadcasting it on success. It also
// resolves this node's own pending fetch, logging a diagnostic if the
// accepted block is not the one it was waiting on (the two can differ
// when a third node's recovery fetch propagates first).
func (n *Node) acceptBlockLocked(blk *chain.Block) {
	if _, ok := n.chainState.Contains(blk.Sha); ok {
		return
	}
	if err := n.chainState.Append(blk); err != nil {
		return
	}
	n.addToFilterLocked(blk)
	n.SendPacket(Packet{Blk: blk})

	if n.awaitingWinner {
		if blk.Sha != n.curWinner {
			logging.Entry().WithFields(logging.Fields{
				"node":     n.id,
				"awaited":  hash.Shortcode(n.curWinner),
				"accepted": hash.Shortcode(blk.Sha),
			}).Warn("chain advanced to a block other than the one this node was awaiting")
		}
		n.awaitingWinner = false
	}

	if n.observer {
		logging.Entry().WithFields(logging.Fields{
			"node":   n.id,
			"height": n.chainState.Len() - 1,
			"block":  hash.Shortcode(blk.Sha),
			"txs":    len(blk.Txs),
		}).Info("observed chain append")
	}
}

// serveFetchLocked answers a recovery fetch for target if this node
// already has it committed; unknown targets are dropped silently.
func (n *Node) serveFetchLocked(target hash.Hash) {
	b, ok := n.chainState.Contains(target)
	if !ok {
		return
	}
	n.SendPacket(Packet{Blk: b})
}

// tallyLocked resolves the current round: if the plurality winner
// matches this node's own candidate, it is committed directly;
// otherwise the node broadcasts a fetch for the winning hash and waits
// for it to arrive via gossip or recovery. Either way the round state
// resets once tallying completes.
func (n *Node) tallyLocked() {
	winner := Tally(n.opinions, n.curSeq)

	if n.currentBlock != nil && winner == n.currentBlock.Sha {
		if err := n.chainState.Append(n.currentBlock); err == nil {
			n.addToFilterLocked(n.currentBlock)
			if n.observer {
				logging.Entry().WithFields(logging.Fields{
					"node":   n.id,
					"height": n.chainState.Len() - 1,
					"block":  hash.Shortcode(n.currentBlock.Sha),
					"txs":    len(n.currentBlock.Txs),
				}).Info("observed chain append")
			}
		}
	} else {
		n.curWinner = winner
		n.awaitingWinner = true
		n.SendPacket(Packet{Fetch: &winner})
	}

	n.opinions = make(map[int]*Opinion)
	n.curSeq = -1
	n.currentBlock = nil
}

// addToFilterLocked folds a committed block's transactions into the
// committed-set bloom filter used by hasTxLocked's fast path.
func (n *Node) addToFilterLocked(b *chain.Block) {
	for _, t := range b.Txs {
		id, err := t.ID()
		if err != nil {
			continue
		}
		n.committed.Add(id.Bytes())
	}
}
