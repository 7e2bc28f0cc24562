package remoteprover

import (
	"context"
	"net/http/httptest"
	"testing"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

type fakeNetworkAPI struct {
	requestID string
	status    string
	reason    string
}

func (a fakeNetworkAPI) RequestProof(_ string, _, _ interface{}) (submitResponse, error) {
	return submitResponse{RequestID: a.requestID}, nil
}

func (a fakeNetworkAPI) GetProofStatus(_ string) (pollResponse, error) {
	return pollResponse{
		Status:       a.status,
		Reason:       a.reason,
		PublicValues: []byte("pub"),
		Proof:        []byte("proof"),
	}, nil
}

func newTestHTTPClient(t *testing.T, api fakeNetworkAPI) *HTTPClient {
	t.Helper()
	srv := gethrpc.NewServer()
	require.NoError(t, srv.RegisterName("network", api))

	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)
	t.Cleanup(srv.Stop)

	c, err := NewHTTPClient(context.Background(), httpSrv.URL, "test-key")
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestHTTPClientSubmit(t *testing.T) {
	c := newTestHTTPClient(t, fakeNetworkAPI{requestID: "req-1"})
	id, err := c.Submit(context.Background(), []byte("pk"), [][]byte{[]byte("chunk")})
	require.NoError(t, err)
	require.Equal(t, "req-1", id)
}

func TestHTTPClientPollFulfilled(t *testing.T) {
	c := newTestHTTPClient(t, fakeNetworkAPI{status: "PROOF_FULFILLED"})
	res, err := c.Poll(context.Background(), "req-1")
	require.NoError(t, err)
	require.Equal(t, Fulfilled, res.Status)
	require.Equal(t, []byte("pub"), res.Proof.PublicValues)
}

func TestHTTPClientPollUnclaimed(t *testing.T) {
	c := newTestHTTPClient(t, fakeNetworkAPI{status: "PROOF_UNCLAIMED", reason: "timed out"})
	res, err := c.Poll(context.Background(), "req-1")
	require.NoError(t, err)
	require.Equal(t, Unclaimed, res.Status)
	require.Equal(t, "timed out", res.Reason)
}

func TestHTTPClientPollUnknownStatusMapsToUnspecified(t *testing.T) {
	c := newTestHTTPClient(t, fakeNetworkAPI{status: "SOMETHING_NEW"})
	res, err := c.Poll(context.Background(), "req-1")
	require.NoError(t, err)
	require.Equal(t, UnspecifiedStatus, res.Status)
}
