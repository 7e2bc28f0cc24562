// Command witnessgen runs the Witness Generator RPC service: given a claim
// key, it derives the witness a zkVM proof needs as input and serves it
// back over JSON-RPC, enforcing at most one derivation in flight.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/kroma-network/sp1-proof-pipeline/internal/config"
	"github.com/kroma-network/sp1-proof-pipeline/internal/derive"
	"github.com/kroma-network/sp1-proof-pipeline/internal/kv"
	"github.com/kroma-network/sp1-proof-pipeline/internal/logging"
	"github.com/kroma-network/sp1-proof-pipeline/internal/metrics"
	"github.com/kroma-network/sp1-proof-pipeline/internal/oracle"
	"github.com/kroma-network/sp1-proof-pipeline/internal/rollupcfg"
	"github.com/kroma-network/sp1-proof-pipeline/internal/rpcserver"
	"github.com/kroma-network/sp1-proof-pipeline/internal/upstream"
	"github.com/kroma-network/sp1-proof-pipeline/internal/witnessgen"
	"github.com/kroma-network/sp1-proof-pipeline/internal/zkvm"
)

var (
	addrFlag         = &cli.StringFlag{Name: "addr", Value: ":3030", Usage: "JSON-RPC listen address", EnvVars: []string{"WITNESSGEN_ADDR"}}
	dataFlag         = &cli.StringFlag{Name: "data-dir", Value: "data/witness_store", Usage: "witness store directory", EnvVars: []string{"WITNESSGEN_DATA_DIR"}}
	metricsFlag      = &cli.StringFlag{Name: "metrics-addr", Value: ":6060", Usage: "Prometheus /metrics listen address", EnvVars: []string{"WITNESSGEN_METRICS_ADDR"}}
	rollupConfigFlag = &cli.StringFlag{Name: "rollup-config", Value: "configs/rollup.toml", Usage: "rollup config TOML path, used when ROLLUP_CONFIG_FROM_FILE is set or the L2 node predates the chain-config RPC", EnvVars: []string{"ROLLUP_CONFIG_PATH"}}
	logFileFlag      = &cli.StringFlag{Name: "log-file", Usage: "rotate logs to this file instead of the terminal", EnvVars: []string{"WITNESSGEN_LOG_FILE"}}
)

func main() {
	app := &cli.App{
		Name:   "witnessgen",
		Usage:  "Witness Generator RPC service",
		Flags:  []cli.Flag{addrFlag, dataFlag, metricsFlag, rollupConfigFlag, logFileFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("witnessgen exited with error", "err", err)
	}
}

func run(c *cli.Context) error {
	logging.Setup(c.String(logFileFlag.Name))

	cfg, err := config.LoadCommon()
	if err != nil {
		return fmt.Errorf("witnessgen: %w", err)
	}

	store, err := kv.Open(kv.Config{Path: c.String(dataFlag.Name)})
	if err != nil {
		return fmt.Errorf("witnessgen: open store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l1Client, err := gethrpc.DialContext(ctx, cfg.L1RPC)
	if err != nil {
		return fmt.Errorf("witnessgen: dial l1: %w", err)
	}
	l2Client, err := gethrpc.DialContext(ctx, cfg.L2RPC)
	if err != nil {
		return fmt.Errorf("witnessgen: dial l2: %w", err)
	}
	l1BeaconClient, err := gethrpc.DialContext(ctx, cfg.L1BeaconRPC)
	if err != nil {
		return fmt.Errorf("witnessgen: dial l1 beacon: %w", err)
	}
	l2NodeClient, err := gethrpc.DialContext(ctx, cfg.L2NodeRPC)
	if err != nil {
		return fmt.Errorf("witnessgen: dial l2 node: %w", err)
	}

	if err := upstream.CheckAll(ctx, upstream.Endpoints{
		L1: l1Client, L1Beacon: l1BeaconClient, L2: l2Client, L2Node: l2NodeClient,
	}); err != nil {
		return fmt.Errorf("witnessgen: startup health check: %w", err)
	}

	genesisL2Number, err := loadGenesisL2Number(ctx, cfg, l2NodeClient, c.String(rollupConfigFlag.Name))
	if err != nil {
		return fmt.Errorf("witnessgen: %w", err)
	}

	fetcher := upstream.NewFetcher(l1Client, l2Client)
	image := zkvm.Image{} // empty image: no program binary is embedded in this build
	programKeyFn := zkvm.ProgramKeyFunc(image, zkvm.Keccak256Deriver{})

	driver := derive.NewLocalDriver(fetcher, unconfiguredHostRunner{}, zkvm.NoopExecutor{}, image, derive.Config{
		SkipSimulation:  cfg.SkipSimulation,
		GenesisL2Number: genesisL2Number,
	})

	registry := witnessgen.NewRegistry()
	worker := witnessgen.NewWorker(store, driver, registry)
	go worker.Run(ctx)

	svc := &witnessgen.Service{
		Store: store, Registry: registry, Worker: worker,
		Version: "0.1.0", SDKVersion: "sp1-v1", ProgramKey: programKeyFn,
	}

	server := rpcserver.New(rpcserver.Config{Addr: c.String(addrFlag.Name)})
	if err := server.RegisterName("witnessgen", witnessgen.NewAPI(svc)); err != nil {
		return fmt.Errorf("witnessgen: register rpc namespace: %w", err)
	}

	go serveMetrics(ctx, c.String(metricsFlag.Name))

	return server.Start(ctx)
}

// loadGenesisL2Number picks the rollup config source: the file at
// rollupConfigPath when ROLLUP_CONFIG_FROM_FILE is set or when the L2 node
// predates the chain-config RPC rollout. When the file source is used, the
// returned accessor stays live via a rollupcfg.Watcher, so an operator
// editing the file doesn't require a restart. Otherwise it returns a nil
// accessor, which disables the derivation driver's genesis-anchor check;
// no genesis number is read from the node's chain config.
func loadGenesisL2Number(ctx context.Context, cfg config.Common, l2NodeClient *gethrpc.Client, rollupConfigPath string) (func() uint64, error) {
	useFile := cfg.RollupConfigFromFile
	if !useFile {
		needsFallback, err := rollupcfg.DetectRequiresFileFallback(ctx, l2NodeClient)
		if err != nil {
			return nil, fmt.Errorf("detect rollup config source: %w", err)
		}
		useFile = needsFallback
	}

	if !useFile {
		log.Info("l2 node exposes chain config; genesis-anchor check disabled")
		return nil, nil
	}

	watcher, err := rollupcfg.NewWatcher(ctx, rollupConfigPath)
	if err != nil {
		return nil, fmt.Errorf("watch rollup config file: %w", err)
	}
	log.Info("loaded rollup config from file", "path", rollupConfigPath, "genesis_l2_number", watcher.GenesisL2Number())
	return watcher.GenesisL2Number, nil
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server exited", "err", err)
	}
}

// unconfiguredHostRunner reports that no external host program has been
// wired in; operators supply one by deployment (binary path, flags), not
// through this service's Go code.
type unconfiguredHostRunner struct{}

func (unconfiguredHostRunner) Run(context.Context, derive.ClaimBounds, common.Hash, derive.CacheMode) (oracle.Preimages, error) {
	return oracle.Preimages{}, fmt.Errorf("witnessgen: no host runner configured")
}
