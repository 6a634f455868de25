package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPeer struct {
	base     *Base[string]
	received []string
}

func newRecordingPeer(e *Engine) *recordingPeer {
	p := &recordingPeer{}
	p.base = NewBase[string](e, p)
	return p
}

func (p *recordingPeer) PacketCallback(pkt string) {
	p.received = append(p.received, pkt)
}

func TestBaseConnectIsReciprocal(t *testing.T) {
	e := NewEngine(1)
	a := newRecordingPeer(e)
	b := newRecordingPeer(e)

	a.base.Connect(b.base, 1)

	assert.True(t, a.base.HasPeer(b.base))
	assert.True(t, b.base.HasPeer(a.base))
	assert.Equal(t, 1, a.base.Connections())
	assert.Equal(t, 1, b.base.Connections())
}

func TestBaseConnectToSelfIsNoop(t *testing.T) {
	e := NewEngine(1)
	a := newRecordingPeer(e)

	a.base.Connect(a.base, 1)
	assert.False(t, a.base.Connected())
}

func TestBaseConnectTwiceIsNoop(t *testing.T) {
	e := NewEngine(1)
	a := newRecordingPeer(e)
	b := newRecordingPeer(e)

	a.base.Connect(b.base, 1)
	a.base.Connect(b.base, 5)

	assert.Equal(t, 1, a.base.Connections())
}

func TestBaseSendPacketDeliversAfterLatency(t *testing.T) {
	e := NewEngine(1)
	a := newRecordingPeer(e)
	b := newRecordingPeer(e)
	a.base.Connect(b.base, 2)

	a.base.SendPacket("hello")

	e.Step() // step 1: latency 2 not yet elapsed
	assert.Empty(t, b.received)
	e.Step() // step 2: latency elapsed, delivered

	require.NotEmpty(t, b.received)
	assert.Equal(t, "hello", b.received[0])
	assert.Empty(t, a.received)
}

func TestBaseDisconnectIsReciprocal(t *testing.T) {
	e := NewEngine(1)
	a := newRecordingPeer(e)
	b := newRecordingPeer(e)
	a.base.Connect(b.base, 1)

	a.base.Disconnect(b.base)

	assert.False(t, a.base.HasPeer(b.base))
	assert.False(t, b.base.HasPeer(a.base))
}
