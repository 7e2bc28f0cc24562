package proverproxy

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
	"github.com/kroma-network/sp1-proof-pipeline/internal/rpcerr"
	"github.com/kroma-network/sp1-proof-pipeline/internal/witnesscodec"
)

func decodeWitness(raw hexutil.Bytes) ([][]byte, error) {
	return witnesscodec.Deserialize(raw)
}

// API is registered under the "prover" namespace on the JSON-RPC server;
// method names here become prover_spec, prover_requestProve,
// prover_getProof.
type API struct {
	svc *Service
}

func NewAPI(svc *Service) *API {
	return &API{svc: svc}
}

type specResult struct {
	Version        string `json:"version"`
	ZKVMSDKVersion string `json:"zkvm_sdk_version"`
	ProgramKey     string `json:"program_key"`
}

func (a *API) Spec() specResult {
	s := a.svc.Spec()
	return specResult{Version: s.Version, ZKVMSDKVersion: s.ZKVMSDKVersion, ProgramKey: s.ProgramKey}
}

func (a *API) RequestProve(ctx context.Context, l2HashHex, l1HeadHashHex string, witnessHex hexutil.Bytes) (string, error) {
	key, err := claimkey.New(l2HashHex, l1HeadHashHex)
	if err != nil {
		return "", rpcerr.InvalidInputHash(err)
	}

	witness, err := decodeWitness(witnessHex)
	if err != nil {
		return "", rpcerr.InvalidParams(err)
	}

	programKey := []byte(a.svc.ProgramKey())
	res, err := a.svc.Registry.RequestProve(ctx, key, programKey, witness)
	if err != nil {
		return "", rpcerr.RemoteNetwork(err)
	}

	if res.Submitted {
		go a.svc.Poller.Watch(context.Background(), key)
	}

	return res.Status.String(), nil
}

type getProofResult struct {
	RequestID     string        `json:"request_id"`
	RequestStatus string        `json:"request_status"`
	ProgramKey    string        `json:"program_key"`
	PublicValues  hexutil.Bytes `json:"public_values_hex"`
	ProofBytesHex hexutil.Bytes `json:"proof_hex"`
}

func (a *API) GetProof(ctx context.Context, l2HashHex, l1HeadHashHex string) (getProofResult, error) {
	key, err := claimkey.New(l2HashHex, l1HeadHashHex)
	if err != nil {
		return getProofResult{}, rpcerr.InvalidInputHash(err)
	}

	res, err := a.svc.Registry.GetProof(ctx, key)
	if err != nil {
		return getProofResult{}, rpcerr.RemoteNetwork(err)
	}

	return getProofResult{
		RequestID:     res.RequestID,
		RequestStatus: res.Status.String(),
		ProgramKey:    a.svc.ProgramKey(),
		PublicValues:  res.Proof.PublicValues,
		ProofBytesHex: res.Proof.ProofBytes,
	}, nil
}
