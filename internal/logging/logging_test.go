package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

func TestSetupEmptyPathIsNoop(t *testing.T) {
	require.NotPanics(t, func() { Setup("") })
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	Setup(path)
	t.Cleanup(func() { Setup("") })

	log.Info("hello from test", "k", "v")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello from test")
}
