// Package upstream provides the out-of-scope chain-data collaborators the
// derivation driver depends on: an L1/L2 header fetcher, and the startup
// health checks both services run before accepting traffic.
package upstream

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/kroma-network/sp1-proof-pipeline/internal/derive"
)

// Fetcher implements derive.Fetcher against real L1/L2 execution endpoints
// over JSON-RPC.
type Fetcher struct {
	l1 *gethrpc.Client
	l2 *gethrpc.Client
}

func NewFetcher(l1, l2 *gethrpc.Client) *Fetcher {
	return &Fetcher{l1: l1, l2: l2}
}

type rpcHeader struct {
	Hash     common.Hash    `json:"hash"`
	Number   *hexutil.Big   `json:"number"`
	L1Origin *rpcL1OriginID `json:"l1Origin,omitempty"`
}

type rpcL1OriginID struct {
	Number *hexutil.Big `json:"number"`
}

func (f *Fetcher) L2HeaderByHash(ctx context.Context, hash common.Hash) (derive.Header, error) {
	var h rpcHeader
	if err := f.l2.CallContext(ctx, &h, "eth_getBlockByHash", hash, false); err != nil {
		return derive.Header{}, fmt.Errorf("upstream: l2 getBlockByHash: %w", err)
	}
	if h.Number == nil {
		return derive.Header{}, fmt.Errorf("upstream: l2 header %s not found", hash)
	}
	var origin uint64
	if h.L1Origin != nil && h.L1Origin.Number != nil {
		origin = h.L1Origin.Number.Uint64()
	}
	return derive.Header{Hash: h.Hash, Number: h.Number.Uint64(), L1Origin: origin}, nil
}

func (f *Fetcher) L1HeaderByHash(ctx context.Context, hash common.Hash) (derive.Header, error) {
	var h rpcHeader
	if err := f.l1.CallContext(ctx, &h, "eth_getBlockByHash", hash, false); err != nil {
		return derive.Header{}, fmt.Errorf("upstream: l1 getBlockByHash: %w", err)
	}
	if h.Number == nil {
		return derive.Header{}, fmt.Errorf("upstream: l1 header %s not found", hash)
	}
	return derive.Header{Hash: h.Hash, Number: h.Number.Uint64()}, nil
}
