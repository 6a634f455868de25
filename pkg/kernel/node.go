package kernel

import "sync"

// PacketHandler is implemented by whatever owns a Base: the link
// fabric calls PacketCallback on delivery. Base itself never
// interprets a packet — that's the consensus layer's job — it only
// routes bytes to whichever handler embeds it, mirroring the source's
// virtual node::packet_callback.
type PacketHandler[T any] interface {
	PacketCallback(pkt T)
}

// Base is the mesh-membership half of a node: it tracks this node's
// links to its neighbors and broadcasts outgoing packets across all
// of them. Consensus state (mempool, chain, opinions) lives one layer
// up, in the owner that embeds Base.
type Base[T any] struct {
	engine *Engine
	owner  PacketHandler[T]

	mu      sync.Mutex
	links   map[*Base[T]]*Link[T]
	peerIDs map[*Base[T]]int
}

// NewBase returns a Base driven by engine, dispatching deliveries to
// owner.
func NewBase[T any](engine *Engine, owner PacketHandler[T]) *Base[T] {
	return &Base[T]{
		engine:  engine,
		owner:   owner,
		links:   make(map[*Base[T]]*Link[T]),
		peerIDs: make(map[*Base[T]]int),
	}
}

// attach installs a fresh callback on link, routing deliveries
// addressed to this side of the link to b.owner, and records peer as
// reachable over link.
func (b *Base[T]) attach(peer *Base[T], link *Link[T]) {
	peerID := link.NextPeerID()
	link.SetCallback(peerID, func(pkt T) { b.owner.PacketCallback(pkt) })

	b.mu.Lock()
	b.links[peer] = link
	b.peerIDs[peer] = peerID
	b.mu.Unlock()
}

func (b *Base[T]) detach(peer *Base[T]) {
	b.mu.Lock()
	link, peerID := b.links[peer], b.peerIDs[peer]
	delete(b.links, peer)
	delete(b.peerIDs, peer)
	b.mu.Unlock()

	if link != nil {
		link.mu.Lock()
		delete(link.callbacks, peerID)
		link.mu.Unlock()
	}
}

// Connect establishes a new link to other with the given latency, if
// one does not already exist. It is a no-op if other is b itself or
// already connected.
func (b *Base[T]) Connect(other *Base[T], latency int64) {
	if other == b {
		return
	}
	b.mu.Lock()
	_, exists := b.links[other]
	b.mu.Unlock()
	if exists {
		return
	}

	link := NewLink[T](latency)
	b.engine.Register(link)

	b.attach(other, link)
	other.attach(b, link)
}

// Disconnect symmetrically removes any link between b and other. The
// underlying Link is left registered with the engine (it will simply
// sit idle with no callbacks) rather than unregistered, matching the
// source, which never reclaims links on disconnect either.
func (b *Base[T]) Disconnect(other *Base[T]) {
	if other == b {
		return
	}
	b.mu.Lock()
	_, exists := b.links[other]
	b.mu.Unlock()
	if !exists {
		return
	}

	other.detach(b)
	b.detach(other)
}

// SendPacket broadcasts pkt to every connected neighbor.
func (b *Base[T]) SendPacket(pkt T) {
	type dest struct {
		link   *Link[T]
		peerID int
	}

	b.mu.Lock()
	dests := make([]dest, 0, len(b.links))
	for peer, link := range b.links {
		dests = append(dests, dest{link: link, peerID: b.peerIDs[peer]})
	}
	b.mu.Unlock()

	step := b.engine.CurrentStep()
	for _, d := range dests {
		d.link.SendPacket(d.peerID, step, pkt)
	}
}

// Connections returns the number of currently connected neighbors.
func (b *Base[T]) Connections() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.links)
}

// Connected reports whether b has any neighbors.
func (b *Base[T]) Connected() bool {
	return b.Connections() > 0
}

// HasPeer reports whether other is a current neighbor of b.
func (b *Base[T]) HasPeer(other *Base[T]) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.links[other]
	return ok
}
