package remoteprover

import (
	"context"
	"fmt"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// HTTPClient is the production Client, talking JSON-RPC to the remote
// proving network over HTTP using the same rpc.Client the rest of this
// module uses for upstream chain endpoints.
type HTTPClient struct {
	rpc        *gethrpc.Client
	privateKey string
}

// NewHTTPClient dials the remote proving network endpoint. privateKey
// authenticates submissions; the network's own RPC methods accept it as a
// parameter rather than via a header, mirroring how the rest of this
// module passes credentials explicitly instead of hiding them in
// transport-level state.
func NewHTTPClient(ctx context.Context, endpoint, privateKey string) (*HTTPClient, error) {
	client, err := gethrpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("remoteprover: dial %s: %w", endpoint, err)
	}
	return &HTTPClient{rpc: client, privateKey: privateKey}, nil
}

type submitResponse struct {
	RequestID string `json:"request_id"`
}

func (c *HTTPClient) Submit(ctx context.Context, programKey []byte, witness [][]byte) (string, error) {
	var resp submitResponse
	err := c.rpc.CallContext(ctx, &resp, "network_requestProof", c.privateKey, programKey, witness)
	if err != nil {
		return "", fmt.Errorf("remoteprover: submit failed: %w", err)
	}
	return resp.RequestID, nil
}

type pollResponse struct {
	Status       string `json:"status"`
	Reason       string `json:"reason"`
	PublicValues []byte `json:"public_values"`
	Proof        []byte `json:"proof"`
}

var statusByName = map[string]Status{
	"PROOF_PREPARING": Preparing,
	"PROOF_REQUESTED": Requested,
	"PROOF_CLAIMED":   Claimed,
	"PROOF_FULFILLED": Fulfilled,
	"PROOF_UNCLAIMED": Unclaimed,
}

func (c *HTTPClient) Poll(ctx context.Context, requestID string) (PollResult, error) {
	var resp pollResponse
	if err := c.rpc.CallContext(ctx, &resp, "network_getProofStatus", requestID); err != nil {
		return PollResult{}, fmt.Errorf("remoteprover: poll failed: %w", err)
	}

	status, ok := statusByName[resp.Status]
	if !ok {
		status = UnspecifiedStatus
	}

	return PollResult{
		Status: status,
		Reason: resp.Reason,
		Proof:  Proof{PublicValues: resp.PublicValues, ProofBytes: resp.Proof},
	}, nil
}

func (c *HTTPClient) Close() {
	c.rpc.Close()
}
