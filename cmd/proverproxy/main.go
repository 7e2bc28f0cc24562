// Command proverproxy runs the Prover Proxy RPC service: given a witness,
// it submits a proving request to the remote proving network, tracks the
// bound request id, and serves proof status and artifacts over JSON-RPC.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/kroma-network/sp1-proof-pipeline/internal/config"
	"github.com/kroma-network/sp1-proof-pipeline/internal/kv"
	"github.com/kroma-network/sp1-proof-pipeline/internal/logging"
	"github.com/kroma-network/sp1-proof-pipeline/internal/metrics"
	"github.com/kroma-network/sp1-proof-pipeline/internal/proverproxy"
	"github.com/kroma-network/sp1-proof-pipeline/internal/remoteprover"
	"github.com/kroma-network/sp1-proof-pipeline/internal/rpcserver"
	"github.com/kroma-network/sp1-proof-pipeline/internal/zkvm"
)

var (
	addrFlag         = &cli.StringFlag{Name: "addr", Value: ":3031", Usage: "JSON-RPC listen address", EnvVars: []string{"PROVERPROXY_ADDR"}}
	dataFlag         = &cli.StringFlag{Name: "data-dir", Value: "data/proof_store", Usage: "proof store directory", EnvVars: []string{"PROVERPROXY_DATA_DIR"}}
	metricsFlag      = &cli.StringFlag{Name: "metrics-addr", Value: ":6061", Usage: "Prometheus /metrics listen address", EnvVars: []string{"PROVERPROXY_METRICS_ADDR"}}
	remoteProverFlag = &cli.StringFlag{Name: "remote-prover-endpoint", Required: true, Usage: "remote proving network JSON-RPC endpoint", EnvVars: []string{"REMOTE_PROVER_ENDPOINT"}}
	logFileFlag      = &cli.StringFlag{Name: "log-file", Usage: "rotate logs to this file instead of the terminal", EnvVars: []string{"PROVERPROXY_LOG_FILE"}}
)

func main() {
	app := &cli.App{
		Name:   "proverproxy",
		Usage:  "Prover Proxy RPC service",
		Flags:  []cli.Flag{addrFlag, dataFlag, metricsFlag, remoteProverFlag, logFileFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("proverproxy exited with error", "err", err)
	}
}

func run(c *cli.Context) error {
	logging.Setup(c.String(logFileFlag.Name))

	cfg, err := config.LoadProver()
	if err != nil {
		return fmt.Errorf("proverproxy: %w", err)
	}

	store, err := kv.Open(kv.Config{Path: c.String(dataFlag.Name)})
	if err != nil {
		return fmt.Errorf("proverproxy: open store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := remoteprover.NewHTTPClient(ctx, c.String(remoteProverFlag.Name), cfg.RemoteProverPrivateKey)
	if err != nil {
		return fmt.Errorf("proverproxy: connect to remote prover: %w", err)
	}
	defer client.Close()

	image := zkvm.Image{}
	programKeyFn := zkvm.ProgramKeyFunc(image, zkvm.Keccak256Deriver{})

	registry := proverproxy.NewRegistry(store, client)
	poller := proverproxy.NewPoller(registry)

	svc := &proverproxy.Service{
		Registry: registry, Poller: poller,
		Version: "0.1.0", SDKVersion: "sp1-v1", ProgramKey: programKeyFn,
	}

	server := rpcserver.New(rpcserver.Config{Addr: c.String(addrFlag.Name)})
	if err := server.RegisterName("prover", proverproxy.NewAPI(svc)); err != nil {
		return fmt.Errorf("proverproxy: register rpc namespace: %w", err)
	}

	go serveMetrics(ctx, c.String(metricsFlag.Name))

	return server.Start(ctx)
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
