// Package rollupcfg provides a file-based fallback for L2 rollup chain
// configuration, used when the L2 node predates the chain-config RPC
// rollout (or the operator pins a known-good configuration directly)
// instead of deriving genesis bounds from the node's own chain config.
package rollupcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/log"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/fsnotify/fsnotify"
)

// Config mirrors the subset of rollup chain configuration the derivation
// driver needs to validate claim bounds against genesis.
type Config struct {
	L2ChainID       uint64 `toml:"l2_chain_id"`
	L1ChainID       uint64 `toml:"l1_chain_id"`
	GenesisL2Number uint64 `toml:"genesis_l2_number"`
	GenesisL1Number uint64 `toml:"genesis_l1_number"`
}

// LoadFromFile reads a rollup configuration from a TOML file, the fallback
// path taken when ROLLUP_CONFIG_FROM_FILE is set instead of querying the
// L2 node's own rollup config endpoint.
func LoadFromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rollupcfg: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("rollupcfg: parse %s: %w", path, err)
	}
	return cfg, nil
}

// chainConfigProbe decodes the subset of debug_chainConfig's response this
// package cares about: whether the node's chain config carries an
// "optimism" section at all.
type chainConfigProbe struct {
	Optimism map[string]interface{} `json:"optimism"`
}

// DetectRequiresFileFallback queries the L2 node's debug_chainConfig and
// reports whether it predates the optimism chain-config rollout ("before
// MPT time", in the original's terms): such nodes omit the "optimism"
// section entirely, and the rollup config must then come from a file
// instead of being trusted from the node's own chain config.
func DetectRequiresFileFallback(ctx context.Context, client *gethrpc.Client) (bool, error) {
	var probe chainConfigProbe
	if err := client.CallContext(ctx, &probe, "debug_chainConfig"); err != nil {
		return false, fmt.Errorf("rollupcfg: query l2 node chain config: %w", err)
	}
	return probe.Optimism == nil, nil
}

// Watcher holds the most recently loaded Config from a file and keeps it
// fresh by reloading whenever the file changes on disk, so an operator
// editing the genesis anchor doesn't need to restart the service.
type Watcher struct {
	mu      sync.RWMutex
	current Config
	path    string
}

// NewWatcher loads path once and starts watching it for changes until ctx
// is canceled. The returned Watcher is safe for concurrent use.
func NewWatcher(ctx context.Context, path string) (*Watcher, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{current: cfg, path: path}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("rollupcfg: create file watcher: %w", err)
	}
	// Watch the containing directory rather than the file itself: editors
	// commonly replace a file via rename-into-place, which doesn't fire a
	// Write event on the original inode.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("rollupcfg: watch %s: %w", path, err)
	}

	go w.run(ctx, fsWatcher)
	return w, nil
}

func (w *Watcher) run(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	defer fsWatcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadFromFile(w.path)
			if err != nil {
				log.Error("rollupcfg: reload failed, keeping previous config", "path", w.path, "err", err)
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			log.Info("rollupcfg: reloaded config", "path", w.path, "genesis_l2_number", cfg.GenesisL2Number)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			log.Error("rollupcfg: watch error", "err", err)
		}
	}
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// GenesisL2Number returns the current genesis anchor, suitable for passing
// as derive.Config.GenesisL2Number so the bound hot-reloads.
func (w *Watcher) GenesisL2Number() uint64 {
	return w.Current().GenesisL2Number
}
