package consensus

import (
	"sort"

	"github.com/obelisklab/obelisksim/pkg/hash"
)

// Tally resolves the round-seq opinions in opinions down to a single
// winning block hash: sort the opinions' block hashes, scan for the
// longest run of identical values, and on a tie between runs of equal
// length keep whichever run was encountered first in sorted order (so
// ties resolve to the lexicographically smaller hash). Opinions whose
// Seq does not match seq are ignored.
//
// An empty or all-stale input yields the all-zero hash, matching
// MerkleRoot's empty-input convention.
func Tally(opinions map[int]*Opinion, seq int64) hash.Hash {
	hashes := make([]hash.Hash, 0, len(opinions))
	for _, op := range opinions {
		if op.Seq == seq {
			hashes = append(hashes, op.BlockSha)
		}
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Less(hashes[j]) })

	var curRun, longRun hash.Hash
	curCt, longCt := 0, 0
	for _, h := range hashes {
		if h != curRun {
			if curCt > longCt {
				longCt, longRun = curCt, curRun
			}
			curRun, curCt = h, 1
		} else {
			curCt++
		}
	}
	if curCt > longCt {
		longRun = curRun
	}
	return longRun
}
