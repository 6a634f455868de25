package chain

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/obelisklab/obelisksim/pkg/hash"
)

// Transaction is an opaque, immutable record identified by its hash.
// Its pseudonymous "public key" field is itself derived from a seed
// number, matching the stand-in identity scheme of the source
// protocol (real signature verification is explicitly out of scope).
type Transaction struct {
	PubKey hash.Hash `msgpack:"k"`
	Sha    hash.Hash `msgpack:"s"`
}

// NewTransaction builds a transaction whose pubkey is derived from
// seed and whose hash is computed immediately; the result is
// considered immutable from this point on.
func NewTransaction(seed int64) *Transaction {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))

	t := &Transaction{PubKey: hash.Sum(buf[:])}
	t.RecomputeHash()
	return t
}

// RecomputeHash sets Sha = H(PubKey). Exposed for the rare case a
// caller constructs a Transaction by hand (e.g. in tests) rather than
// through NewTransaction.
func (t *Transaction) RecomputeHash() {
	t.Sha = hash.Sum(t.PubKey[:])
}

// Hash returns the transaction's identity.
func (t *Transaction) Hash() hash.Hash {
	return t.Sha
}

// ID returns the content-addressed identity used as a map key and in
// diagnostics.
func (t *Transaction) ID() (TxID, error) {
	return idFromHash(t.Sha)
}

// Less orders transactions lexicographically by hash.
func (t *Transaction) Less(other *Transaction) bool {
	return t.Sha.Less(other.Sha)
}

// Marshal encodes the transaction with msgpack, giving every
// content-addressed artifact a canonical byte form for snapshotting
// and diagnostics (packets themselves travel as Go values, not bytes;
// see pkg/consensus.Packet).
func (t *Transaction) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling transaction")
	}
	return b, nil
}

// Unmarshal decodes a transaction previously produced by Marshal.
func (t *Transaction) Unmarshal(b []byte) error {
	if err := msgpack.Unmarshal(b, t); err != nil {
		return errors.Wrap(err, "unmarshaling transaction")
	}
	return nil
}
