package witnessgen

import (
	"sync"
	"testing"

	"pgregory.net/rapid"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
)

func rapidKey(t *testing.T, n int) claimkey.Key {
	t.Helper()
	h := make([]byte, 64)
	for i := range h {
		h[i] = '0'
	}
	h[63] = byte('0' + n%10)
	k, err := claimkey.New("0x"+string(h), "0x"+string(h))
	if err != nil {
		t.Fatal(err)
	}
	return k
}

// TestRegistrySingleFlightProperty checks that across any interleaving of
// concurrent TryEnqueue calls, the registry accepts at most one before any
// MarkIdle, and correctly reports busy afterward.
func TestRegistrySingleFlightProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		reg := NewRegistry()
		n := rapid.IntRange(2, 6).Draw(rt, "n")

		keys := make([]claimkey.Key, n)
		for i := range keys {
			keys[i] = rapidKey(t, i)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		accepted := 0

		for i := 0; i < n; i++ {
			wg.Add(1)
			key := keys[i]
			go func() {
				defer wg.Done()
				if reg.TryEnqueue(key) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if accepted > 1 {
			rt.Fatalf("registry accepted %d concurrent enqueues, want at most 1", accepted)
		}
		if accepted == 1 {
			if _, busy := reg.Current(); !busy {
				rt.Fatalf("registry reports idle after an accepted enqueue")
			}
		}
	})
}
