package kernel

import "sync"

// Callback is invoked by a Link on packet delivery, outside the
// link's internal lock.
type Callback[T any] func(payload T)

type queuedPacket[T any] struct {
	startStep int64
	payload   T
}

// Link connects exactly two endpoints and delivers packets sent on one
// endpoint to the other after a fixed number of ticks of latency. It
// is generic over the payload type the way the source's
// template<PacketType> link is — this module only ever instantiates
// Link[consensus.Packet], but the kernel itself stays packet-agnostic.
type Link[T any] struct {
	mu sync.Mutex

	callbacks map[int]Callback[T]
	queues    map[int][]queuedPacket[T]
	latency   int64
	nextPeer  int

	currentStep int64
}

// NewLink returns a Link with the given fixed per-packet latency, in
// ticks.
func NewLink[T any](latency int64) *Link[T] {
	return &Link[T]{
		callbacks: make(map[int]Callback[T]),
		queues:    make(map[int][]queuedPacket[T]),
		latency:   latency,
	}
}

// NextPeerID hands out sequentially increasing, link-local endpoint
// ids.
func (l *Link[T]) NextPeerID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextPeer++
	return l.nextPeer
}

// SetCallback registers the delivery callback for peerid.
func (l *Link[T]) SetCallback(peerid int, cb Callback[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks[peerid] = cb
}

// SetCurrentStep implements Component.
func (l *Link[T]) SetCurrentStep(step int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentStep = step
}

// SendPacket enqueues payload onto every endpoint's queue other than
// srcPeerID, tagged with step. step must be the engine's current tick
// at the moment of sending — the link's own SetCurrentStep mirror only
// advances when the link itself is stepped, which lags behind a
// sender stepped earlier in the same tick. Sending on a link with no
// other peers is a no-op.
func (l *Link[T]) SendPacket(srcPeerID int, step int64, payload T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := queuedPacket[T]{startStep: step, payload: payload}
	for peerid := range l.callbacks {
		if peerid != srcPeerID {
			l.queues[peerid] = append(l.queues[peerid], p)
		}
	}
}

// Step drains, per endpoint, every queued packet old enough to have
// crossed the link's latency, invoking that endpoint's callback for
// each. Callbacks are invoked with the link's lock released, so a
// callback that itself calls SendPacket on this (or another) link
// cannot deadlock.
func (l *Link[T]) Step() {
	l.mu.Lock()
	callbacks := make(map[int]Callback[T], len(l.callbacks))
	for k, v := range l.callbacks {
		callbacks[k] = v
	}
	l.mu.Unlock()

	for peerid, cb := range callbacks {
		for {
			l.mu.Lock()
			q := l.queues[peerid]
			if len(q) == 0 || l.currentStep-q[0].startStep < l.latency {
				l.mu.Unlock()
				break
			}
			payload := q[0].payload
			l.queues[peerid] = q[1:]
			l.mu.Unlock()

			// Delivering to a missing callback is impossible here
			// since we snapshotted callbacks above, but a peer
			// disconnecting mid-drain is not a protocol error either
			// way: the callback snapshot is simply stale for one tick.
			cb(payload)
		}
	}
}
