// Package kernel implements the discrete-event simulation core: a
// stepped virtual clock that drives registered components, and the
// deterministic PRNG all other randomness in the simulation flows
// through.
package kernel

import (
	"math/rand"
	"sync"
)

// Component is anything the Engine steps once per tick: links and
// consensus nodes both implement it.
type Component interface {
	// SetCurrentStep is called by the Engine once at registration and
	// then immediately before every Step, so the component's view of
	// "now" matches the tick being run.
	SetCurrentStep(step int64)
	Step()
}

// Engine is the simulation kernel: it owns the virtual clock, the
// component registry, and the sole PRNG every other package draws
// randomness from.
//
// Engine.Step is sequential by design, not concurrent, so a given seed
// always produces a bit-identical trace. Component order within a
// tick is registration order, which is stable across runs for a fixed
// sequence of Register calls.
type Engine struct {
	mu          sync.Mutex
	currentStep int64
	order       []Component
	index       map[Component]int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine returns an Engine whose PRNG is seeded with seed.
func NewEngine(seed int64) *Engine {
	return &Engine{
		index: make(map[Component]int),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Register adds c to the registry, initializing its step view to the
// engine's current step. Registering an already-registered component
// is a no-op.
func (e *Engine) Register(c Component) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.index[c]; ok {
		return
	}
	c.SetCurrentStep(e.currentStep)
	e.index[c] = len(e.order)
	e.order = append(e.order, c)
}

// Unregister removes c from the registry. Unregistering a component
// that was never registered is a no-op.
func (e *Engine) Unregister(c Component) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[c]
	if !ok {
		return
	}
	delete(e.index, c)
	e.order = append(e.order[:i], e.order[i+1:]...)
	for j := i; j < len(e.order); j++ {
		e.index[e.order[j]] = j
	}
}

// Step advances the virtual clock by one tick and invokes every
// registered component's Step exactly once. Components observed by a
// later component within the same tick see the step value that was
// current when Step started.
func (e *Engine) Step() {
	e.mu.Lock()
	e.currentStep++
	step := e.currentStep
	components := make([]Component, len(e.order))
	copy(components, e.order)
	e.mu.Unlock()

	for _, c := range components {
		c.SetCurrentStep(step)
		c.Step()
	}
}

// CurrentStep returns the most recently completed tick number.
func (e *Engine) CurrentStep() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStep
}

// RandInt returns a uniform draw from [lo, hi], inclusive on both
// ends. It is the only source of randomness any other package in
// this module may use.
func (e *Engine) RandInt(lo, hi int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return lo + e.rng.Intn(hi-lo+1)
}

// RandReal returns a uniform draw from [lo, hi).
func (e *Engine) RandReal(lo, hi float64) float64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return lo + e.rng.Float64()*(hi-lo)
}
