// Package claimkey defines the (L2 hash, L1 head hash) pair that identifies
// a fault-proof claim throughout the witness/proof pipeline.
package claimkey

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Key is the pair of chain hashes identifying a claim. Both fields are
// 32-byte values; the canonical serialization is the 64-byte concatenation
// L2Hash || L1HeadHash, and equality is byte-equality. Order matters: a Key
// built from (h1, h2) is distinct from one built from (h2, h1).
type Key struct {
	L2Hash     common.Hash
	L1HeadHash common.Hash
}

// New builds a Key from hex-encoded hashes. Input may be 0x-prefixed or bare.
func New(l2HashHex, l1HeadHashHex string) (Key, error) {
	l2Hash, err := parseHash(l2HashHex)
	if err != nil {
		return Key{}, fmt.Errorf("l2_hash: %w", err)
	}
	l1Head, err := parseHash(l1HeadHashHex)
	if err != nil {
		return Key{}, fmt.Errorf("l1_head_hash: %w", err)
	}
	return Key{L2Hash: l2Hash, L1HeadHash: l1Head}, nil
}

func parseHash(s string) (common.Hash, error) {
	stripped := strings.TrimPrefix(s, "0x")
	if len(stripped) != 2*common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash length: %q", s)
	}
	b, err := hex.DecodeString(stripped)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	return common.BytesToHash(b), nil
}

// Bytes returns the 64-byte canonical key used by the on-disk store:
// L2Hash || L1HeadHash.
func (k Key) Bytes() []byte {
	buf := make([]byte, 0, 2*common.HashLength)
	buf = append(buf, k.L2Hash.Bytes()...)
	buf = append(buf, k.L1HeadHash.Bytes()...)
	return buf
}

// String renders the full hex pair, mostly for debug logging.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.L2Hash, k.L1HeadHash)
}

// IsZero reports whether both hashes are the zero hash.
func (k Key) IsZero() bool {
	return k.L2Hash == (common.Hash{}) && k.L1HeadHash == (common.Hash{})
}

// UserRequestID is the human-readable log label derived deterministically
// from the key: the first 8 hex characters of each hash, joined by "-". It
// is never used as a store key.
func (k Key) UserRequestID() string {
	l2 := k.L2Hash.Hex()
	l1 := k.L1HeadHash.Hex()
	return fmt.Sprintf("%s-%s", shortHex(l2), shortHex(l1))
}

func shortHex(hexStr string) string {
	stripped := strings.TrimPrefix(hexStr, "0x")
	if len(stripped) < 8 {
		return stripped
	}
	return stripped[:8]
}
