package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadCommonSucceedsWithAllEndpoints(t *testing.T) {
	setEnv(t, map[string]string{
		"L1_RPC":       "http://l1",
		"L1_BEACON_RPC": "http://l1beacon",
		"L2_RPC":       "http://l2",
		"L2_NODE_RPC":  "http://l2node",
	})

	cfg, err := LoadCommon()
	require.NoError(t, err)
	require.Equal(t, "http://l1", cfg.L1RPC)
	require.False(t, cfg.SkipSimulation)
}

func TestLoadCommonFailsOnMissingEndpoint(t *testing.T) {
	setEnv(t, map[string]string{
		"L1_RPC":      "http://l1",
		"L2_RPC":      "http://l2",
		"L2_NODE_RPC": "http://l2node",
	})
	t.Setenv("L1_BEACON_RPC", "")

	_, err := LoadCommon()
	require.Error(t, err)
}

func TestLoadProverRequiresPrivateKey(t *testing.T) {
	setEnv(t, map[string]string{
		"L1_RPC":        "http://l1",
		"L1_BEACON_RPC": "http://l1beacon",
		"L2_RPC":        "http://l2",
		"L2_NODE_RPC":   "http://l2node",
	})

	_, err := LoadProver()
	require.Error(t, err)

	t.Setenv("REMOTE_PROVER_PRIVATE_KEY", "0xabc")
	cfg, err := LoadProver()
	require.NoError(t, err)
	require.Equal(t, "0xabc", cfg.RemoteProverPrivateKey)
}
