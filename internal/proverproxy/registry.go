package proverproxy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
	"github.com/kroma-network/sp1-proof-pipeline/internal/kv"
	"github.com/kroma-network/sp1-proof-pipeline/internal/metrics"
	"github.com/kroma-network/sp1-proof-pipeline/internal/remoteprover"
)

// Registry maps claim keys to remote request ids and serializes the
// submit critical section with a readers-writer lock. Unlike the Witness
// Generator's registry, many keys may be in flight at once; only the
// per-key "check existing id, else submit" sequence needs to be atomic.
type Registry struct {
	store  *kv.Store
	client remoteprover.Client

	mu sync.RWMutex
}

func NewRegistry(store *kv.Store, client remoteprover.Client) *Registry {
	return &Registry{store: store, client: client}
}

// RequestProve implements requestProve(K, witness) from the task-registry
// state machine: read-check first, upgrade to a write lock only to
// perform the non-idempotent remote submission.
func (r *Registry) RequestProve(ctx context.Context, key claimkey.Key, programKey []byte, witness [][]byte) (Result, error) {
	if res, ok, err := r.checkExisting(key); err != nil {
		return Result{}, err
	} else if ok {
		return res, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock: another goroutine may have won the
	// race to submit between our read check and acquiring this lock.
	if id, found, err := r.lookupReqID(key); err != nil {
		return Result{}, err
	} else if found {
		return Result{Status: Processing, RequestID: id}, nil
	}

	id, err := r.client.Submit(ctx, programKey, witness)
	if err != nil {
		return Result{}, fmt.Errorf("proverproxy: remote submit: %w", err)
	}

	if err := r.store.Set(reqIDKey(key), []byte(id)); err != nil {
		return Result{}, fmt.Errorf("proverproxy: persist request id: %w", err)
	}

	metrics.ProverRemoteSubmitsTotal.Inc()
	log.Info("submitted proof request", "user_req_id", key.UserRequestID(), "remote_request_id", id)
	return Result{Status: Processing, RequestID: id, Submitted: true}, nil
}

// checkExisting performs the read-locked portion of requestProve: if a
// proof is already cached, report Completed; if only an id is bound,
// report Processing. ok is false when neither is true and the caller must
// proceed to the write-locked submit path.
func (r *Registry) checkExisting(key claimkey.Key) (Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, found, err := r.lookupReqID(key)
	if err != nil {
		return Result{}, false, err
	}
	if !found {
		return Result{}, false, nil
	}

	if proof, hasProof, err := r.lookupProof(key); err != nil {
		return Result{}, false, err
	} else if hasProof {
		return Result{Status: Completed, RequestID: id, Proof: proof}, true, nil
	}
	return Result{Status: Processing, RequestID: id}, true, nil
}

// GetProof implements getProof(K) from §4.4: look up the bound id, return
// a cached proof if present, otherwise poll the remote network and map
// its status onto the local state machine.
func (r *Registry) GetProof(ctx context.Context, key claimkey.Key) (Result, error) {
	id, found, err := r.lookupReqID(key)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{Status: None}, nil
	}

	if proof, hasProof, err := r.lookupProof(key); err != nil {
		return Result{}, err
	} else if hasProof {
		return Result{Status: Completed, RequestID: id, Proof: proof}, nil
	}

	poll, err := r.client.Poll(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("proverproxy: remote poll: %w", err)
	}

	switch poll.Status {
	case remoteprover.Preparing, remoteprover.Requested, remoteprover.Claimed:
		return Result{Status: Processing, RequestID: id}, nil

	case remoteprover.Fulfilled:
		artifact := ProofArtifact{PublicValues: poll.Proof.PublicValues, ProofBytes: poll.Proof.ProofBytes}
		if err := r.persistProof(key, artifact); err != nil {
			return Result{}, err
		}
		return Result{Status: Completed, RequestID: id, Proof: artifact}, nil

	case remoteprover.Unclaimed:
		log.Warn("proof request unclaimed", "user_req_id", key.UserRequestID(), "reason", poll.Reason)
		return Result{Status: Failed, RequestID: id, Reason: poll.Reason}, nil

	default: // UnspecifiedStatus: forget the id, let the caller retry from scratch.
		if err := r.store.Remove(reqIDKey(key)); err != nil {
			return Result{}, fmt.Errorf("proverproxy: forgetting unspecified-status id: %w", err)
		}
		return Result{Status: None}, nil
	}
}

func (r *Registry) persistProof(key claimkey.Key, artifact ProofArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	encoded, err := encodeProof(artifact)
	if err != nil {
		return err
	}
	if err := r.store.Set(proofKey(key), encoded); err != nil {
		return fmt.Errorf("proverproxy: persist proof: %w", err)
	}
	return nil
}

func (r *Registry) lookupReqID(key claimkey.Key) (string, bool, error) {
	v, found, err := r.store.Get(reqIDKey(key))
	if err != nil {
		if errors.Is(err, kv.ErrCorruption) {
			return "", false, err
		}
		return "", false, fmt.Errorf("proverproxy: lookup request id: %w", err)
	}
	if !found {
		return "", false, nil
	}
	return string(v), true, nil
}

func (r *Registry) lookupProof(key claimkey.Key) (ProofArtifact, bool, error) {
	v, found, err := r.store.Get(proofKey(key))
	if err != nil {
		if errors.Is(err, kv.ErrCorruption) {
			return ProofArtifact{}, false, err
		}
		return ProofArtifact{}, false, fmt.Errorf("proverproxy: lookup proof: %w", err)
	}
	if !found {
		return ProofArtifact{}, false, nil
	}
	artifact, err := decodeProof(v)
	if err != nil {
		return ProofArtifact{}, false, err
	}
	return artifact, true, nil
}
