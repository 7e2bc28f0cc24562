// Package config loads each service's configuration from environment
// variables, following the same mandatory-endpoint-at-startup discipline
// for both the Witness Generator and the Prover Proxy.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Common holds the environment-sourced fields shared by both services.
type Common struct {
	L1RPC       string
	L1BeaconRPC string
	L2RPC       string
	L2NodeRPC   string

	RollupConfigFromFile bool
	SkipSimulation       bool
}

// LoadCommon reads the four mandatory chain endpoints plus the optional
// behavior flags. A missing mandatory endpoint is a fatal configuration
// error; callers should log.Crit and exit rather than start with a
// half-configured upstream.
func LoadCommon() (Common, error) {
	var missing []string
	get := func(name string) string {
		v := os.Getenv(name)
		if v == "" {
			missing = append(missing, name)
		}
		return v
	}

	cfg := Common{
		L1RPC:       get("L1_RPC"),
		L1BeaconRPC: get("L1_BEACON_RPC"),
		L2RPC:       get("L2_RPC"),
		L2NodeRPC:   get("L2_NODE_RPC"),
	}
	if len(missing) > 0 {
		return Common{}, fmt.Errorf("config: missing required environment variables: %v", missing)
	}

	cfg.RollupConfigFromFile = parseBool(os.Getenv("ROLLUP_CONFIG_FROM_FILE"))
	cfg.SkipSimulation = parseBool(os.Getenv("SKIP_SIMULATION"))
	return cfg, nil
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}

// ProverConfig adds the Prover Proxy's remote-network credential to
// Common.
type ProverConfig struct {
	Common
	RemoteProverPrivateKey string
}

// LoadProver reads Common plus REMOTE_PROVER_PRIVATE_KEY, mandatory for
// the Prover Proxy only.
func LoadProver() (ProverConfig, error) {
	common, err := LoadCommon()
	if err != nil {
		return ProverConfig{}, err
	}
	key := os.Getenv("REMOTE_PROVER_PRIVATE_KEY")
	if key == "" {
		return ProverConfig{}, fmt.Errorf("config: missing required environment variable: REMOTE_PROVER_PRIVATE_KEY")
	}
	return ProverConfig{Common: common, RemoteProverPrivateKey: key}, nil
}
