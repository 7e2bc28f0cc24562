package witnessgen

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
	"github.com/kroma-network/sp1-proof-pipeline/internal/kv"
	"github.com/kroma-network/sp1-proof-pipeline/internal/rpcerr"
	"github.com/kroma-network/sp1-proof-pipeline/internal/witnesscodec"
)

// API is registered under the "witnessgen" namespace; method names here
// become witnessgen_spec, witnessgen_requestWitness, witnessgen_getWitness.
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

func (a *API) RequestWitness(ctx context.Context, l2HashHex, l1HeadHashHex string) (string, error) {
	key, err := claimkey.New(l2HashHex, l1HeadHashHex)
	if err != nil {
		return "", rpcerr.InvalidInputHash(err)
	}

	status, err := a.svc.RequestWitness(ctx, key)
	if err != nil {
		var conflict *ErrAlreadyInProgress
		if errors.As(err, &conflict) {
			return "", rpcerr.AlreadyInProgress(conflict.Other)
		}
		if errors.Is(err, kv.ErrCorruption) {
			return "", rpcerr.StorageOrBusy(err)
		}
		return "", rpcerr.StorageOrBusy(err)
	}
	return status.String(), nil
}

type getWitnessResponse struct {
	Status     string        `json:"status"`
	ProgramKey string        `json:"program_key"`
	WitnessHex hexutil.Bytes `json:"witness_hex"`
}

func (a *API) GetWitness(_ context.Context, l2HashHex, l1HeadHashHex string) (getWitnessResponse, error) {
	key, err := claimkey.New(l2HashHex, l1HeadHashHex)
	if err != nil {
		return getWitnessResponse{}, rpcerr.InvalidInputHash(err)
	}

	res, err := a.svc.GetWitness(key)
	if err != nil {
		return getWitnessResponse{}, rpcerr.StorageOrBusy(err)
	}

	resp := getWitnessResponse{Status: res.Status.String(), ProgramKey: a.svc.ProgramKey()}
	if res.Status == Completed {
		serialized, err := witnesscodec.Serialize(res.Witness)
		if err != nil {
			return getWitnessResponse{}, rpcerr.StorageOrBusy(err)
		}
		resp.WitnessHex = serialized
	}
	return resp, nil
}
