package chain

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/obelisklab/obelisksim/pkg/hash"
)

// TxID and BlockID are the map-key/log-friendly identities of a
// transaction and a block, respectively. Both wrap the artifact's
// already-computed 32-byte SHA-256 digest in a raw multihash: no
// re-hashing happens here, the digest bytes are carried through
// untouched so identity still satisfies the chain model's hash
// invariants exactly.
type (
	TxID    = cid.Cid
	BlockID = cid.Cid
)

// idFromHash wraps a content hash in a CIDv1 over a raw multihash
// encoding of that hash's bytes.
func idFromHash(h hash.Hash) (cid.Cid, error) {
	mh, err := multihash.Encode(h[:], multihash.SHA2_256)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "encoding multihash")
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}
