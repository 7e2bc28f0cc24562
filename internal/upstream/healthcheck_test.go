package upstream

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

type healthyNetAPI struct{}

func (healthyNetAPI) Version() string { return "1" }

type healthyDebugAPI struct{}

func (healthyDebugAPI) GetRawHeader(string) (hexutil.Bytes, error) {
	return hexutil.Bytes{0xde, 0xad, 0xbe, 0xef}, nil
}

type healthyOptimismAPI struct{}

func (healthyOptimismAPI) OutputAtBlock(string) (map[string]interface{}, error) {
	return map[string]interface{}{"outputRoot": "0x1"}, nil
}

func newHealthyClient(t *testing.T) *gethrpc.Client {
	t.Helper()
	srv := gethrpc.NewServer()
	require.NoError(t, srv.RegisterName("net", healthyNetAPI{}))
	require.NoError(t, srv.RegisterName("debug", healthyDebugAPI{}))
	require.NoError(t, srv.RegisterName("optimism", healthyOptimismAPI{}))

	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)
	t.Cleanup(srv.Stop)

	client, err := gethrpc.DialContext(context.Background(), httpSrv.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestCheckAllHappyPath(t *testing.T) {
	client := newHealthyClient(t)
	eps := Endpoints{L1: client, L1Beacon: client, L2: client, L2Node: client}

	err := CheckAll(context.Background(), eps)
	require.NoError(t, err)
}

func TestCheckAllFailsOnMissingMethod(t *testing.T) {
	srv := gethrpc.NewServer()
	require.NoError(t, srv.RegisterName("net", healthyNetAPI{}))
	// debug and optimism namespaces deliberately unregistered.
	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()
	defer srv.Stop()

	client, err := gethrpc.DialContext(context.Background(), httpSrv.URL)
	require.NoError(t, err)
	defer client.Close()

	eps := Endpoints{L1: client, L1Beacon: client, L2: client, L2Node: client}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err = CheckAll(ctx, eps)
	require.Error(t, err)
}
