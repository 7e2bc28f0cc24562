package witnessgen

import (
	"context"
	"fmt"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
	"github.com/kroma-network/sp1-proof-pipeline/internal/kv"
	"github.com/kroma-network/sp1-proof-pipeline/internal/witnesscodec"
)

// Service implements the requestWitness/getWitness decision table: the
// store is authoritative when it holds a completed value (covers the
// window between job completion and registry clear); the registry is
// authoritative when the store is empty (covers the window between job
// start and first write).
type Service struct {
	Store      *kv.Store
	Registry   *Registry
	Worker     *Worker
	Version    string
	SDKVersion string
	ProgramKey func() string
}

func (s *Service) Spec() Spec {
	return Spec{Version: s.Version, ZKVMSDKVersion: s.SDKVersion, ProgramKey: s.ProgramKey()}
}

// RequestWitness implements §4.2's protocol table.
func (s *Service) RequestWitness(_ context.Context, key claimkey.Key) (Status, error) {
	found, isSentinel, err := s.lookupStoreState(key)
	if err != nil {
		return None, err
	}

	if found && !isSentinel {
		return Completed, nil
	}

	current, busy := s.Registry.Current()

	if found && isSentinel {
		if !busy {
			// idle: remove sentinel, enqueue, return Processing.
			if err := s.Store.Remove(key.Bytes()); err != nil {
				return None, fmt.Errorf("witnessgen: clear failure sentinel: %w", err)
			}
			return s.enqueue(key)
		}
		if current == key {
			return Processing, nil
		}
		return None, &ErrAlreadyInProgress{Other: current.UserRequestID()}
	}

	// absent
	if !busy {
		return s.enqueue(key)
	}
	if current == key {
		return Processing, nil
	}
	return None, &ErrAlreadyInProgress{Other: current.UserRequestID()}
}

func (s *Service) enqueue(key claimkey.Key) (Status, error) {
	if !s.Registry.TryEnqueue(key) {
		// Lost a race between the idle check and TryEnqueue; the winner's
		// key is now current. Treat this as the busy-with-other-key case.
		current, _ := s.Registry.Current()
		if current == key {
			return Processing, nil
		}
		return None, &ErrAlreadyInProgress{Other: current.UserRequestID()}
	}
	s.Worker.Enqueue(key)
	return Processing, nil
}

// GetWitness reports the current status and, when Completed, the witness
// bytes.
type GetWitnessResult struct {
	Status  Status
	Witness [][]byte
}

func (s *Service) GetWitness(key claimkey.Key) (GetWitnessResult, error) {
	found, isSentinel, err := s.lookupStoreState(key)
	if err != nil {
		return GetWitnessResult{}, err
	}
	if !found {
		if current, busy := s.Registry.Current(); busy && current == key {
			return GetWitnessResult{Status: Processing}, nil
		}
		return GetWitnessResult{Status: None}, nil
	}
	if isSentinel {
		return GetWitnessResult{Status: Failed}, nil
	}

	raw, _, decErr := s.storeGet(key)
	if decErr != nil {
		return GetWitnessResult{}, decErr
	}
	chunks, err := witnesscodec.Deserialize(raw)
	if err != nil {
		return GetWitnessResult{}, fmt.Errorf("witnessgen: decode stored witness: %w", err)
	}
	return GetWitnessResult{Status: Completed, Witness: chunks}, nil
}

func (s *Service) lookupStoreState(key claimkey.Key) (found, isSentinel bool, err error) {
	v, found, err := s.storeGet(key)
	if err != nil {
		return false, false, err
	}
	if !found {
		return false, false, nil
	}
	return true, len(v) == 0, nil
}

func (s *Service) storeGet(key claimkey.Key) ([]byte, bool, error) {
	v, found, err := s.Store.Get(key.Bytes())
	if err != nil {
		return nil, false, fmt.Errorf("witnessgen: store lookup: %w", err)
	}
	return v, found, nil
}
