// Package simulation ties together the kernel, the consensus nodes,
// and the peer mesh into the runnable loop described by the original
// program's main(): build the topology once, then step the engine
// forever (or for a fixed number of ticks) on its own goroutine,
// reporting progress to a dashboard.
package simulation

import (
	"time"

	"github.com/obelisklab/obelisksim/internal/config"
	"github.com/obelisklab/obelisksim/internal/logging"
	"github.com/obelisklab/obelisksim/pkg/consensus"
	"github.com/obelisklab/obelisksim/pkg/kernel"
	"github.com/obelisklab/obelisksim/pkg/topology"
)

// StepPeriod is the wall-clock period between ticks, matching the
// original's 100ms redraw/step cadence.
const StepPeriod = 100 * time.Millisecond

// Dashboard is the observer-facing collaborator the Run loop reports
// progress to; internal/dashboard.Dashboard satisfies it.
type Dashboard interface {
	SetStep(step int64)
	Log(msg string)
}

// Simulation owns the engine and the node population built from a
// Config, and drives ticks at a steady wall-clock cadence.
type Simulation struct {
	engine *kernel.Engine
	nodes  []*consensus.Node
	cfg    *config.Config
}

// New builds the engine and peer mesh from cfg. Every draw of
// randomness used to build the mesh — and every draw used later while
// stepping — comes from the same PRNG, seeded from cfg.Seed, so two
// Simulations built from an identical Config reproduce an identical
// trace.
func New(cfg *config.Config) (*Simulation, error) {
	engine := kernel.NewEngine(cfg.Seed)
	nodes, err := topology.Build(engine, topology.Options{
		N:              cfg.Nodes,
		NumPeers:       cfg.PeersPerNode,
		ObserverCount:  cfg.ObserverCount,
		BlockTimeSteps: cfg.BlockTimeSteps,
		TxStepsMin:     cfg.TxStepsMin,
		TxStepsMax:     cfg.TxStepsMax,
		LatencyMin:     cfg.LatencyMin,
		LatencyMax:     cfg.LatencyMax,
		Quorum:         cfg.Quorum,
	})
	if err != nil {
		return nil, err
	}

	return &Simulation{engine: engine, nodes: nodes, cfg: cfg}, nil
}

// Engine exposes the underlying kernel, mostly for tests that want to
// step it directly without going through Run.
func (s *Simulation) Engine() *kernel.Engine {
	return s.engine
}

// Nodes returns the built node population in topology order.
func (s *Simulation) Nodes() []*consensus.Node {
	return s.nodes
}

// Run steps the engine once per StepPeriod until stop is closed,
// reporting the current step to dash after every tick. It is intended
// to run on its own goroutine, mirroring the original's background
// simulation thread paired with a blocking UI on the main thread.
func (s *Simulation) Run(stop <-chan struct{}, dash Dashboard) {
	ticker := time.NewTicker(StepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.engine.Step()
			dash.SetStep(s.engine.CurrentStep())
		}
	}
}

// RunSteps advances the engine exactly n ticks immediately, with no
// wall-clock pacing. Used by tests and by any non-interactive mode
// that wants a deterministic run to completion.
func (s *Simulation) RunSteps(n int64) {
	for i := int64(0); i < n; i++ {
		s.engine.Step()
	}
	logging.Entry().WithField("step", s.engine.CurrentStep()).Debug("run to target step count")
}
