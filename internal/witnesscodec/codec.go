// Package witnesscodec serializes a witness sequence (an ordered list of
// opaque byte chunks) to and from the single flat byte string carried over
// the wire as witness_hex, using RLP as the rest of this module's stores
// do for structured values.
package witnesscodec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// Serialize encodes an ordered witness chunk sequence into a single byte
// string suitable for storage or for hex-encoding onto the wire.
func Serialize(chunks [][]byte) ([]byte, error) {
	b, err := rlp.EncodeToBytes(chunks)
	if err != nil {
		return nil, fmt.Errorf("witnesscodec: encode: %w", err)
	}
	return b, nil
}

// Deserialize is the inverse of Serialize.
func Deserialize(raw []byte) ([][]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var chunks [][]byte
	if err := rlp.DecodeBytes(raw, &chunks); err != nil {
		return nil, fmt.Errorf("witnesscodec: decode: %w", err)
	}
	return chunks, nil
}
