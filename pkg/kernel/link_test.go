package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkDoesNotDeliverBeforeLatencyElapses(t *testing.T) {
	l := NewLink[string](3)
	src := l.NextPeerID()
	dst := l.NextPeerID()

	var received []string
	l.SetCallback(src, func(string) {})
	l.SetCallback(dst, func(p string) { received = append(received, p) })

	l.SetCurrentStep(5)
	l.SendPacket(src, 5, "P")

	for step := int64(6); step <= 7; step++ {
		l.SetCurrentStep(step)
		l.Step()
		require.Empty(t, received, "must not deliver before step %d", 5+3)
	}

	l.SetCurrentStep(8)
	l.Step()
	assert.Equal(t, []string{"P"}, received)
}

func TestLinkPreservesFIFOPerDirection(t *testing.T) {
	l := NewLink[int](1)
	src := l.NextPeerID()
	dst := l.NextPeerID()

	var received []int
	l.SetCallback(src, func(int) {})
	l.SetCallback(dst, func(p int) { received = append(received, p) })

	l.SetCurrentStep(1)
	l.SendPacket(src, 1, 1)
	l.SendPacket(src, 1, 2)
	l.SendPacket(src, 1, 3)

	l.SetCurrentStep(2)
	l.Step()

	assert.Equal(t, []int{1, 2, 3}, received)
}

func TestLinkSendWithNoPeersIsNoop(t *testing.T) {
	l := NewLink[int](1)
	assert.NotPanics(t, func() {
		l.SendPacket(99, 0, 42)
	})
}

func TestLinkBroadcastsToAllOtherPeers(t *testing.T) {
	l := NewLink[string](0)
	a := l.NextPeerID()
	b := l.NextPeerID()
	c := l.NextPeerID()

	var bGot, cGot []string
	l.SetCallback(a, func(string) {})
	l.SetCallback(b, func(p string) { bGot = append(bGot, p) })
	l.SetCallback(c, func(p string) { cGot = append(cGot, p) })

	l.SetCurrentStep(1)
	l.SendPacket(a, 1, "hello")
	l.SetCurrentStep(1)
	l.Step()

	assert.Equal(t, []string{"hello"}, bGot)
	assert.Equal(t, []string{"hello"}, cGot)
}
