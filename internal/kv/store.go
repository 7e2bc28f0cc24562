// Package kv implements the bounded, TTL-expiring on-disk key-value store
// shared by the Witness Generator and the Prover Proxy. Values are opaque
// byte strings; callers (witnessgen, proverproxy) are responsible for their
// own higher-level codec (this repo uses RLP, following go-ethereum
// convention) before calling Set and after calling Get.
package kv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/kroma-network/sp1-proof-pipeline/internal/clock"
)

// ErrStorageFull is returned by Set when capacity eviction itself fails.
var ErrStorageFull = errors.New("kv: storage full")

// ErrCorruption is returned by Get/GetWithTimestamp when a stored entry
// cannot be decoded. It is never swallowed: callers must treat it as fatal.
var ErrCorruption = errors.New("kv: corruption")

const (
	// DefaultCapacity is the default maximum number of live entries.
	DefaultCapacity = 10
	// DefaultTTLSeconds is the default entry lifetime, 24 hours.
	DefaultTTLSeconds = 24 * 60 * 60

	timestampLen = 8
)

// Config controls how a Store is opened.
type Config struct {
	// Path is the filesystem directory backing the store.
	Path string
	// Capacity is the maximum number of live entries; the oldest entry is
	// evicted once a new Set would exceed it. Zero means DefaultCapacity.
	Capacity int
	// TTLSeconds is how long an entry remains readable after being written.
	// Zero means DefaultTTLSeconds.
	TTLSeconds int64
	// Compression enables Snappy compression of the underlying engine.
	Compression bool
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.TTLSeconds <= 0 {
		c.TTLSeconds = DefaultTTLSeconds
	}
	return c
}

// Store is a process-local, durable key-value store with per-entry TTL and
// a global entry-count cap. All operations serialize through mu; the
// underlying leveldb engine is safe for concurrent access on its own, but
// the capacity/TTL bookkeeping in Store is not, so Store owns a single lock.
type Store struct {
	cfg   Config
	db    *leveldb.DB
	clock clock.Clock

	mu       sync.Mutex
	order    *lru.LRU[string, int64] // key -> write timestamp, oldest evicted first
	evictErr error                   // set transiently by onEvict during Set/loadExisting
}

// Open opens (or creates) a Store at cfg.Path.
func Open(cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create store directory %s: %w", cfg.Path, err)
	}

	opts := &opt.Options{Compression: opt.NoCompression}
	if cfg.Compression {
		opts.Compression = opt.SnappyCompression
	}
	db, err := leveldb.OpenFile(cfg.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("kv: open leveldb at %s: %w", cfg.Path, err)
	}

	s := &Store{cfg: cfg, db: db, clock: clock.System{}}
	order, err := lru.NewLRU[string, int64](cfg.Capacity, s.onEvict)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: init eviction index: %w", err)
	}
	s.order = order

	if err := s.loadExisting(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// SetClock overrides the wall clock; only meant for tests.
func (s *Store) SetClock(c clock.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = c
}

func (s *Store) onEvict(key string, _ int64) {
	if err := s.db.Delete([]byte(key), nil); err != nil {
		s.evictErr = err
	}
}

// loadExisting rebuilds the eviction order index from what's already on
// disk, oldest-first, so capacity accounting survives a process restart.
func (s *Store) loadExisting() error {
	type item struct {
		key string
		ts  int64
	}
	var items []item

	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		ts, _, err := decodeEntry(iter.Value())
		if err != nil {
			return fmt.Errorf("kv: loading existing entry %x: %w", iter.Key(), err)
		}
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		items = append(items, item{key: string(key), ts: ts})
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("kv: iterate existing entries: %w", err)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ts < items[j].ts })
	for _, it := range items {
		s.order.Add(it.key, it.ts)
	}
	return nil
}

// Set writes value under key, stamped with the current wall-clock time. If
// the store is at capacity, the oldest entry is evicted first.
func (s *Store) Set(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	ks := string(key)

	s.evictErr = nil
	s.order.Add(ks, now)
	if s.evictErr != nil {
		err := fmt.Errorf("%w: %v", ErrStorageFull, s.evictErr)
		s.evictErr = nil
		return err
	}

	if err := s.db.Put(key, encodeEntry(now, value), nil); err != nil {
		return fmt.Errorf("kv: put: %w", err)
	}
	return nil
}

// Get returns the value stored under key, or found=false if the key is
// absent or its entry has expired per the configured TTL.
func (s *Store) Get(key []byte) (value []byte, found bool, err error) {
	_, value, found, err = s.GetWithTimestamp(key)
	return value, found, err
}

// GetWithTimestamp is like Get but also returns the entry's write timestamp
// (unix seconds).
func (s *Store) GetWithTimestamp(key []byte) (timestamp int64, value []byte, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, getErr := s.db.Get(key, nil)
	if getErr == leveldb.ErrNotFound {
		return 0, nil, false, nil
	}
	if getErr != nil {
		return 0, nil, false, fmt.Errorf("kv: get: %w", getErr)
	}

	ts, v, decErr := decodeEntry(raw)
	if decErr != nil {
		return 0, nil, false, decErr
	}

	if s.clock.Now()-ts > s.cfg.TTLSeconds {
		// Expired: treat as absent, and lazily clean it up.
		s.removeLocked(key)
		return 0, nil, false, nil
	}
	return ts, v, true, nil
}

// Remove idempotently deletes key.
func (s *Store) Remove(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(key)
}

func (s *Store) removeLocked(key []byte) error {
	s.order.Remove(string(key))
	if err := s.db.Delete(key, nil); err != nil && err != leveldb.ErrNotFound {
		return fmt.Errorf("kv: delete: %w", err)
	}
	return nil
}

// Close releases the underlying engine handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeEntry(timestamp int64, value []byte) []byte {
	buf := make([]byte, timestampLen+len(value))
	binary.LittleEndian.PutUint64(buf[:timestampLen], uint64(timestamp))
	copy(buf[timestampLen:], value)
	return buf
}

func decodeEntry(raw []byte) (timestamp int64, value []byte, err error) {
	if len(raw) < timestampLen {
		return 0, nil, fmt.Errorf("%w: entry too short (%d bytes)", ErrCorruption, len(raw))
	}
	ts := int64(binary.LittleEndian.Uint64(raw[:timestampLen]))
	return ts, raw[timestampLen:], nil
}
