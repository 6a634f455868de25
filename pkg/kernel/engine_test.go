package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingComponent struct {
	current int64
	steps   []int64
}

func (c *countingComponent) SetCurrentStep(step int64) {
	c.current = step
}

func (c *countingComponent) Step() {
	c.steps = append(c.steps, c.current)
}

func TestEngineStepInvokesEachComponentOnce(t *testing.T) {
	e := NewEngine(1)
	a := &countingComponent{}
	b := &countingComponent{}
	e.Register(a)
	e.Register(b)

	e.Step()
	e.Step()

	assert.Equal(t, []int64{1, 2}, a.steps)
	assert.Equal(t, []int64{1, 2}, b.steps)
	assert.Equal(t, int64(2), e.CurrentStep())
}

func TestEngineUnregisterStopsStepping(t *testing.T) {
	e := NewEngine(1)
	a := &countingComponent{}
	e.Register(a)
	e.Step()
	e.Unregister(a)
	e.Step()

	assert.Equal(t, []int64{1}, a.steps)
}

func TestEngineRegisterIsIdempotent(t *testing.T) {
	e := NewEngine(1)
	a := &countingComponent{}
	e.Register(a)
	e.Register(a)
	e.Step()

	assert.Len(t, a.steps, 1)
}

func TestEngineRandIntIsDeterministicForSeed(t *testing.T) {
	e1 := NewEngine(99)
	e2 := NewEngine(99)

	for i := 0; i < 20; i++ {
		assert.Equal(t, e1.RandInt(0, 1000), e2.RandInt(0, 1000))
	}
}

func TestEngineRandIntRespectsBounds(t *testing.T) {
	e := NewEngine(5)
	for i := 0; i < 200; i++ {
		v := e.RandInt(3, 7)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 7)
	}
}

func TestEngineRandRealRespectsBounds(t *testing.T) {
	e := NewEngine(5)
	for i := 0; i < 200; i++ {
		v := e.RandReal(1.5, 2.5)
		assert.GreaterOrEqual(t, v, 1.5)
		assert.Less(t, v, 2.5)
	}
}
