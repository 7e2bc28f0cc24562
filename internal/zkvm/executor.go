package zkvm

import "context"

// Executor runs the program image over a witness inside the zkVM purely to
// sanity-check its cycle count. It never produces a proof; that is the
// remote prover's job (internal/remoteprover). Gated by
// derive.Config.SkipSimulation, off by default.
type Executor interface {
	Execute(ctx context.Context, image Image, witness [][]byte) (cycles uint64, err error)
}

// NoopExecutor always succeeds without running anything; used when
// simulation is disabled or in tests.
type NoopExecutor struct{}

func (NoopExecutor) Execute(context.Context, Image, [][]byte) (uint64, error) {
	return 0, nil
}
