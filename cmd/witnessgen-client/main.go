// Command witnessgen-client is a small operator tool that drives a running
// Witness Generator through requestWitness/getWitness in a poll loop and
// prints the resulting status, standing in for the original's separate
// preview/execute CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/urfave/cli/v2"
)

var (
	endpointFlag = &cli.StringFlag{Name: "endpoint", Value: "http://127.0.0.1:3030", Usage: "witnessgen JSON-RPC endpoint"}
	l2HashFlag   = &cli.StringFlag{Name: "l2-hash", Required: true, Usage: "L2 block hash (hex, 0x-prefixed or bare)"}
	l1HeadFlag   = &cli.StringFlag{Name: "l1-head-hash", Required: true, Usage: "L1 head block hash (hex, 0x-prefixed or bare)"}
	pollFlag     = &cli.DurationFlag{Name: "poll-interval", Value: 3 * time.Second, Usage: "getWitness poll interval"}
)

func main() {
	app := &cli.App{
		Name:   "witnessgen-client",
		Usage:  "request and poll for a witness from a running Witness Generator",
		Flags:  []cli.Flag{endpointFlag, l2HashFlag, l1HeadFlag, pollFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "witnessgen-client:", err)
		os.Exit(1)
	}
}

type getWitnessResponse struct {
	Status     string `json:"status"`
	ProgramKey string `json:"program_key"`
	WitnessHex string `json:"witness_hex"`
}

func run(c *cli.Context) error {
	ctx := context.Background()
	client, err := gethrpc.DialContext(ctx, c.String(endpointFlag.Name))
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.String(endpointFlag.Name), err)
	}
	defer client.Close()

	l2Hash := c.String(l2HashFlag.Name)
	l1Head := c.String(l1HeadFlag.Name)

	var status string
	if err := client.CallContext(ctx, &status, "witnessgen_requestWitness", l2Hash, l1Head); err != nil {
		return fmt.Errorf("requestWitness: %w", err)
	}
	fmt.Printf("requestWitness -> %s\n", status)

	ticker := time.NewTicker(c.Duration(pollFlag.Name))
	defer ticker.Stop()

	for range ticker.C {
		var res getWitnessResponse
		if err := client.CallContext(ctx, &res, "witnessgen_getWitness", l2Hash, l1Head); err != nil {
			return fmt.Errorf("getWitness: %w", err)
		}
		fmt.Printf("getWitness -> status=%s program_key=%s\n", res.Status, res.ProgramKey)
		if res.Status == "Completed" || res.Status == "Failed" {
			if res.Status == "Failed" {
				return fmt.Errorf("witness derivation failed")
			}
			fmt.Printf("witness_hex length: %d bytes\n", len(res.WitnessHex))
			return nil
		}
	}
	return nil
}
