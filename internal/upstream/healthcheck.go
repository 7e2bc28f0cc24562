package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Endpoints bundles the four mandatory chain RPC handles each service
// verifies at startup.
type Endpoints struct {
	L1       *gethrpc.Client
	L1Beacon *gethrpc.Client
	L2       *gethrpc.Client
	L2Node   *gethrpc.Client
}

// healthcheckTimeout bounds the whole retrying sequence of one check, not
// a single attempt.
const healthcheckTimeout = 2 * time.Minute

// CheckAll runs the full startup health-check sequence: net_version on all
// four endpoints, a raw latest-header fetch on L1 and L2 (proxying for
// "exposes the debug namespace"), and an output-at-block query against the
// L2 rollup node. Any failure is fatal; callers should log.Crit and exit
// rather than start serving traffic against an unhealthy upstream.
func CheckAll(ctx context.Context, eps Endpoints) error {
	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"l1 net_version", func(ctx context.Context) error { return checkNetVersion(ctx, eps.L1) }},
		{"l1_beacon net_version", func(ctx context.Context) error { return checkNetVersion(ctx, eps.L1Beacon) }},
		{"l2 net_version", func(ctx context.Context) error { return checkNetVersion(ctx, eps.L2) }},
		{"l2_node net_version", func(ctx context.Context) error { return checkNetVersion(ctx, eps.L2Node) }},
		{"l1 debug namespace", func(ctx context.Context) error { return checkLatestHeader(ctx, eps.L1) }},
		{"l2 debug namespace", func(ctx context.Context) error { return checkLatestHeader(ctx, eps.L2) }},
		{"l2 rollup node output at block", func(ctx context.Context) error { return checkOutputAtBlock(ctx, eps.L2Node) }},
	}

	for _, c := range checks {
		if err := retryWithBackoff(ctx, c.name, c.fn); err != nil {
			return fmt.Errorf("upstream: startup health check %q failed: %w", c.name, err)
		}
		log.Info("startup health check passed", "check", c.name)
	}
	return nil
}

func retryWithBackoff(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, healthcheckTimeout)
	defer cancel()

	b := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.RetryNotify(
		func() error { return fn(ctx) },
		b,
		func(err error, wait time.Duration) {
			log.Warn("startup health check retrying", "check", name, "err", err, "wait", wait)
		},
	)
}

func checkNetVersion(ctx context.Context, client *gethrpc.Client) error {
	var version string
	return client.CallContext(ctx, &version, "net_version")
}

func checkLatestHeader(ctx context.Context, client *gethrpc.Client) error {
	var header hexutil.Bytes
	return client.CallContext(ctx, &header, "debug_getRawHeader", "latest")
}

func checkOutputAtBlock(ctx context.Context, client *gethrpc.Client) error {
	var out map[string]interface{}
	return client.CallContext(ctx, &out, "optimism_outputAtBlock", "latest")
}
