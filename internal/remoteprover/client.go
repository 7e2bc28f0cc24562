// Package remoteprover defines the client interface to the out-of-scope
// remote proving network: submit a witness, get back a request id, and
// poll that id for status until a proof is fulfilled or the job is
// unclaimed.
package remoteprover

import "context"

// Status mirrors the remote network's own status vocabulary so the Prover
// Proxy's state machine can map it onto local Processing/Completed/Failed
// without losing information.
type Status int

const (
	UnspecifiedStatus Status = iota
	Preparing
	Requested
	Claimed
	Fulfilled
	Unclaimed
)

func (s Status) String() string {
	switch s {
	case Preparing:
		return "Preparing"
	case Requested:
		return "Requested"
	case Claimed:
		return "Claimed"
	case Fulfilled:
		return "Fulfilled"
	case Unclaimed:
		return "Unclaimed"
	default:
		return "UnspecifiedStatus"
	}
}

// Proof is the artifact returned once a remote request reaches Fulfilled.
type Proof struct {
	PublicValues []byte
	ProofBytes   []byte
}

// PollResult is what Poll reports for a single request id.
type PollResult struct {
	Status Status
	// Reason is populated when Status == Unclaimed.
	Reason string
	// Proof is populated when Status == Fulfilled.
	Proof Proof
}

// Client talks to the out-of-scope remote proving network. There is one
// production implementation (HTTPClient) plus a fake used by tests.
type Client interface {
	// Submit sends a witness for proving and returns the network's
	// request id for later polling.
	Submit(ctx context.Context, programKey []byte, witness [][]byte) (requestID string, err error)
	// Poll fetches the current status of a previously submitted request.
	Poll(ctx context.Context, requestID string) (PollResult, error)
}
