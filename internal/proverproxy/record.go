package proverproxy

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
)

// Request-id and proof records live under distinct key prefixes in the
// shared store, per record.go's invariant: a proof record implies a
// corresponding request-id record (the proof is never written without
// first persisting the id that produced it).
const (
	reqIDPrefix = "r:"
	proofPrefix = "p:"
)

func reqIDKey(k claimkey.Key) []byte {
	return append([]byte(reqIDPrefix), k.Bytes()...)
}

func proofKey(k claimkey.Key) []byte {
	return append([]byte(proofPrefix), k.Bytes()...)
}

type proofRecord struct {
	PublicValues []byte
	ProofBytes   []byte
}

func encodeProof(p ProofArtifact) ([]byte, error) {
	b, err := rlp.EncodeToBytes(proofRecord{PublicValues: p.PublicValues, ProofBytes: p.ProofBytes})
	if err != nil {
		return nil, fmt.Errorf("proverproxy: encode proof: %w", err)
	}
	return b, nil
}

func decodeProof(raw []byte) (ProofArtifact, error) {
	var rec proofRecord
	if err := rlp.DecodeBytes(raw, &rec); err != nil {
		return ProofArtifact{}, fmt.Errorf("proverproxy: decode proof: %w", err)
	}
	return ProofArtifact{PublicValues: rec.PublicValues, ProofBytes: rec.ProofBytes}, nil
}
