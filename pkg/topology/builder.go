// Package topology builds the random peer mesh the simulation's nodes
// gossip over. Construction happens in two passes: a connectivity
// pass that wires each node to one earlier node so the resulting
// graph has no isolated component, and a degree pass, grounded on the
// original program's main() topology loop, that tops every node up to
// at least NumPeers neighbors.
package topology

import (
	"github.com/obelisklab/obelisksim/pkg/consensus"
	"github.com/obelisklab/obelisksim/pkg/kernel"
)

// Options configures the mesh and the node population it connects.
type Options struct {
	N              int   // total node count
	NumPeers       int   // minimum connections per node
	ObserverCount  int   // number of the first N nodes flagged observer
	BlockTimeSteps int64 // shared block-proposal cadence
	TxStepsMin     int64 // per-node transaction cadence range, inclusive
	TxStepsMax     int64
	LatencyMin     int64 // per-link latency range, inclusive
	LatencyMax     int64
	Quorum         int // Z, the opinion count required to tally
}

// maxCandidateAttempts bounds the peer-selection retry loop so a
// misconfigured Options (NumPeers close to or exceeding N-1) fails
// loud rather than spinning forever, a case the original's unbounded
// retry loop does not guard against.
const maxCandidateAttempts = 10_000

// Build constructs N consensus nodes, wires them into a single
// connected mesh, and tops every node up to at least NumPeers
// neighbors at a latency drawn from [LatencyMin, LatencyMax],
// registering every node with engine as a stepped component. All
// randomness — anchor/peer choice, latency, and per-node tx cadence —
// is drawn from engine's seeded PRNG, so a given seed always yields
// the same mesh.
func Build(engine *kernel.Engine, opts Options) ([]*consensus.Node, error) {
	nodes := make([]*consensus.Node, opts.N)
	for i := 0; i < opts.N; i++ {
		txSteps := int64(engine.RandInt(int(opts.TxStepsMin), int(opts.TxStepsMax)))
		observer := i < opts.ObserverCount
		nodes[i] = consensus.NewNode(engine, i+1, opts.BlockTimeSteps, txSteps, opts.Quorum, observer)
		engine.Register(nodes[i])
	}

	// Connectivity pass: attach every node but the first to a randomly
	// chosen earlier node, so the mesh is one connected component
	// before degree requirements are layered on.
	for i := 1; i < len(nodes); i++ {
		anchor := engine.RandInt(0, i-1)
		nodes[i].Connect(nodes[anchor].Base, drawLatency(engine, opts))
	}

	// Degree pass: top every node up to at least NumPeers neighbors.
	for i, n := range nodes {
		for n.Connections() < opts.NumPeers {
			candidate, err := pickCandidate(engine, nodes, i, n)
			if err != nil {
				return nil, err
			}
			nodes[i].Connect(nodes[candidate].Base, drawLatency(engine, opts))
		}
	}

	return nodes, nil
}

func drawLatency(engine *kernel.Engine, opts Options) int64 {
	return int64(engine.RandInt(int(opts.LatencyMin), int(opts.LatencyMax)))
}

func pickCandidate(engine *kernel.Engine, nodes []*consensus.Node, self int, n *consensus.Node) (int, error) {
	for attempt := 0; attempt < maxCandidateAttempts; attempt++ {
		candidate := engine.RandInt(0, len(nodes)-1)
		if candidate == self {
			continue
		}
		if n.HasPeer(nodes[candidate].Base) {
			continue
		}
		return candidate, nil
	}
	return 0, errTopologyUnsatisfiable
}
