package proverproxy

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/kroma-network/sp1-proof-pipeline/internal/witnesscodec"
)

func newTestAPI(t *testing.T) (*API, *Registry, interface{ SubmitCount() int }) {
	t.Helper()
	reg, fake := openTestRegistry(t)
	svc := &Service{
		Registry:   reg,
		Poller:     NewPoller(reg),
		Version:    "0.1.0",
		SDKVersion: "sp1-v1",
		ProgramKey: func() string { return "pk" },
	}
	return NewAPI(svc), reg, fake
}

func TestAPIRequestProveRepeatedCallsSubmitOnce(t *testing.T) {
	api, _, fake := newTestAPI(t)
	witnessHex, err := witnesscodec.Serialize([][]byte{{1, 2, 3}})
	require.NoError(t, err)

	l2Hash := "0xc62000000000000000000000000000000000000000000000000000000000561b"
	l1Head := "0xb001000000000000000000000000000000000000000000000000000000005d5d"

	status1, err := api.RequestProve(context.Background(), l2Hash, l1Head, hexutil.Bytes(witnessHex))
	require.NoError(t, err)
	require.Equal(t, "Processing", status1)

	status2, err := api.RequestProve(context.Background(), l2Hash, l1Head, hexutil.Bytes(witnessHex))
	require.NoError(t, err)
	require.Equal(t, "Processing", status2)

	// A fresh submission only happens once, even though both calls return
	// Processing; api.go must gate watcher spawning on Registry.RequestProve's
	// Submitted flag rather than on Status alone.
	require.Equal(t, 1, fake.SubmitCount())
}
