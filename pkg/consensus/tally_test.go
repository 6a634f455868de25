package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obelisklab/obelisksim/pkg/hash"
)

func h(b byte) hash.Hash {
	var out hash.Hash
	out[0] = b
	return out
}

func TestTallyPlurality(t *testing.T) {
	// A:3, B:2, C:1 -> A wins outright.
	a, bb, c := h(0x01), h(0x02), h(0x03)
	opinions := map[int]*Opinion{
		1: {NodeID: 1, Seq: 7, BlockSha: a},
		2: {NodeID: 2, Seq: 7, BlockSha: a},
		3: {NodeID: 3, Seq: 7, BlockSha: a},
		4: {NodeID: 4, Seq: 7, BlockSha: bb},
		5: {NodeID: 5, Seq: 7, BlockSha: bb},
		6: {NodeID: 6, Seq: 7, BlockSha: c},
	}

	assert.Equal(t, a, Tally(opinions, 7))
}

func TestTallyTieBreaksToLexicallyFirst(t *testing.T) {
	// A:2, B:2 -> tie resolves to whichever hash sorts first.
	lo, hi := h(0x01), h(0x02)
	opinions := map[int]*Opinion{
		1: {NodeID: 1, Seq: 3, BlockSha: hi},
		2: {NodeID: 2, Seq: 3, BlockSha: hi},
		3: {NodeID: 3, Seq: 3, BlockSha: lo},
		4: {NodeID: 4, Seq: 3, BlockSha: lo},
	}

	assert.Equal(t, lo, Tally(opinions, 3))
}

func TestTallyIgnoresStaleRounds(t *testing.T) {
	opinions := map[int]*Opinion{
		1: {NodeID: 1, Seq: 1, BlockSha: h(0x01)},
		2: {NodeID: 2, Seq: 2, BlockSha: h(0x02)},
		3: {NodeID: 3, Seq: 2, BlockSha: h(0x02)},
	}

	assert.Equal(t, h(0x02), Tally(opinions, 2))
}

func TestTallyEmptyYieldsZeroHash(t *testing.T) {
	assert.Equal(t, hash.Hash{}, Tally(map[int]*Opinion{}, 0))
}

func TestTallySingleOpinion(t *testing.T) {
	target := h(0x09)
	opinions := map[int]*Opinion{1: {NodeID: 1, Seq: 4, BlockSha: target}}

	assert.Equal(t, target, Tally(opinions, 4))
}
