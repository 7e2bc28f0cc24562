// Package derive implements the derivation driver: given a claim key, it
// produces the witness artifact the zkVM program consumes as input tape,
// by delegating to the out-of-scope Fetcher and HostRunner collaborators
// and optionally sanity-checking the result inside the zkVM.
package derive

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
	"github.com/kroma-network/sp1-proof-pipeline/internal/zkvm"
)

// Driver produces a witness artifact for a claim key. There is exactly one
// concrete implementation (localDriver); the interface exists so callers'
// tests can substitute a fake Driver, while localDriver itself takes
// Fetcher/HostRunner/Executor interfaces that its own tests fake.
type Driver interface {
	Derive(ctx context.Context, key claimkey.Key) ([][]byte, error)
}

// Config controls optional derivation behavior.
type Config struct {
	// CacheMode chosen so repeated derivations for the same L2 range don't
	// thrash the host runner's filesystem cache.
	CacheMode CacheMode
	// SkipSimulation disables the post-derivation zkVM sanity-check.
	// Off by default.
	SkipSimulation bool
	// GenesisL2Number, when set, rejects claims at or below the chain's
	// genesis anchor. It's a function rather than a fixed value so a
	// rollupcfg.Watcher can be passed directly, letting the bound
	// hot-reload as an operator edits the rollup config file. Nil
	// disables the check.
	GenesisL2Number func() uint64
}

type localDriver struct {
	fetcher  Fetcher
	runner   HostRunner
	executor zkvm.Executor
	image    zkvm.Image
	cfg      Config
}

// NewLocalDriver builds the single production Driver implementation.
func NewLocalDriver(fetcher Fetcher, runner HostRunner, executor zkvm.Executor, image zkvm.Image, cfg Config) Driver {
	return &localDriver{fetcher: fetcher, runner: runner, executor: executor, image: image, cfg: cfg}
}

func (d *localDriver) Derive(ctx context.Context, key claimkey.Key) ([][]byte, error) {
	l2Header, err := d.fetcher.L2HeaderByHash(ctx, key.L2Hash)
	if err != nil {
		return nil, fmt.Errorf("%w: l2_hash %s not found: %v", ErrInvalidInput, key.L2Hash, err)
	}
	if l2Header.Number == 0 {
		return nil, fmt.Errorf("%w: l2 block number is 0", ErrInvalidInput)
	}
	if d.cfg.GenesisL2Number != nil {
		if genesis := d.cfg.GenesisL2Number(); genesis > 0 && l2Header.Number <= genesis {
			return nil, fmt.Errorf("%w: l2 block %d is at or before genesis anchor %d",
				ErrInvalidInput, l2Header.Number, genesis)
		}
	}

	l1Header, err := d.fetcher.L1HeaderByHash(ctx, key.L1HeadHash)
	if err != nil {
		return nil, fmt.Errorf("%w: l1_head_hash %s not found: %v", ErrInvalidInput, key.L1HeadHash, err)
	}
	if l1Header.Number < l2Header.L1Origin {
		return nil, fmt.Errorf("%w: l1 head %d is older than l2 block's l1 origin %d",
			ErrUpstream, l1Header.Number, l2Header.L1Origin)
	}

	bounds := ClaimBounds{L2SafeHead: l2Header.Number - 1, L2Claim: l2Header.Number}

	log.Info("deriving witness", "user_req_id", key.UserRequestID(), "l2_safe_head", bounds.L2SafeHead, "l2_claim", bounds.L2Claim)

	preimages, err := d.runner.Run(ctx, bounds, key.L1HeadHash, d.cfg.CacheMode)
	if err != nil {
		return nil, fmt.Errorf("%w: host runner failed: %v", ErrUpstream, err)
	}

	if !d.cfg.SkipSimulation {
		if _, err := d.executor.Execute(ctx, d.image, preimages.Chunks); err != nil {
			return nil, fmt.Errorf("%w: zkvm sanity-check failed: %v", ErrExecution, err)
		}
	}

	return preimages.Chunks, nil
}
