package derive

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kroma-network/sp1-proof-pipeline/internal/oracle"
)

// Header is the subset of chain-header data the derivation driver needs
// from the upstream fetcher to validate a claim before invoking the host
// runner.
type Header struct {
	Hash common.Hash
	// Number is the block number. For an L2 header, Number == 0 is
	// rejected outright.
	Number uint64
	// L1Origin is, for an L2 header, the L1 block number it derives from.
	// Unused for L1 headers.
	L1Origin uint64
}

// Fetcher resolves hashes to headers on their respective chains. It stands
// in for the out-of-scope upstream data-fetcher.
type Fetcher interface {
	L2HeaderByHash(ctx context.Context, hash common.Hash) (Header, error)
	L1HeaderByHash(ctx context.Context, hash common.Hash) (Header, error)
}

// CacheMode controls whether the host runner's filesystem cache directory
// is kept between derivations so repeated derivations don't thrash.
type CacheMode int

const (
	DeleteCache CacheMode = iota
	KeepCache
)

// ClaimBounds is the [l2_number-1, l2_number] range passed to the host
// runner.
type ClaimBounds struct {
	L2SafeHead uint64
	L2Claim    uint64
}

// HostRunner invokes the external host program that populates a local
// preimage oracle for the given bounds and L1 head override. It stands in
// for the out-of-scope host program.
type HostRunner interface {
	Run(ctx context.Context, bounds ClaimBounds, l1Head common.Hash, mode CacheMode) (oracle.Preimages, error)
}
