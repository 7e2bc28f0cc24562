package witnessgen

import (
	"sync"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
)

// Registry enforces at-most-one derivation in flight and answers "is K
// being worked on right now?" in constant time. It holds no store state;
// Service combines Registry with the shared KV store to compute the full
// requestWitness/getWitness decision table.
type Registry struct {
	mu      sync.Mutex
	current *claimkey.Key
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Current reports the key presently occupying the single worker slot, if
// any.
func (r *Registry) Current() (claimkey.Key, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return claimkey.Key{}, false
	}
	return *r.current, true
}

// TryEnqueue claims the worker slot for key if idle. Returns false if the
// slot is already occupied (by key or by another key); callers distinguish
// the two cases via Current().
func (r *Registry) TryEnqueue(key claimkey.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		return false
	}
	k := key
	r.current = &k
	return true
}

// MarkIdle releases the worker slot after a derivation completes or fails.
func (r *Registry) MarkIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
}
