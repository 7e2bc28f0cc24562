package proverproxy

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
)

// DefaultPollTimeout bounds how long the background poller keeps checking
// a single submitted request before giving up; the bound request id stays
// persisted, so a later getProof call re-polls from where this left off.
const DefaultPollTimeout = 4 * time.Hour

// DefaultPollInterval is how often the background poller re-checks a
// request's remote status.
const DefaultPollInterval = 30 * time.Second

// Poller periodically calls GetProof on behalf of a key until it settles
// (Completed/Failed) or the timeout elapses, so that a proof fulfilled
// long after the original client's RPC call returned still lands in the
// store without requiring the client to keep polling itself.
type Poller struct {
	registry *Registry
	timeout  time.Duration
	interval time.Duration
}

func NewPoller(registry *Registry) *Poller {
	return &Poller{registry: registry, timeout: DefaultPollTimeout, interval: DefaultPollInterval}
}

// Watch blocks until the key's proof settles or the poller's timeout
// elapses. Intended to run on its own goroutine per in-flight request;
// callers that only care about the eventual background persistence can
// fire-and-forget it.
func (p *Poller) Watch(ctx context.Context, key claimkey.Key) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Warn("poller gave up waiting for proof", "user_req_id", key.UserRequestID())
			return
		case <-ticker.C:
			res, err := p.registry.GetProof(ctx, key)
			if err != nil {
				log.Error("poller failed to poll proof", "user_req_id", key.UserRequestID(), "err", err)
				continue
			}
			if res.Status == Completed || res.Status == Failed {
				return
			}
		}
	}
}
