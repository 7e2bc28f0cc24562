package witnessgen

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
	"github.com/kroma-network/sp1-proof-pipeline/internal/kv"
)

type fakeDriver struct {
	mu        sync.Mutex
	calls     int32
	fail      bool
	chunks    [][]byte
	derivedAt func()
}

func (f *fakeDriver) Derive(ctx context.Context, key claimkey.Key) ([][]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.derivedAt != nil {
		f.derivedAt()
	}
	if f.fail {
		return nil, errors.New("derivation failed")
	}
	return f.chunks, nil
}

func (f *fakeDriver) callCount() int32 { return atomic.LoadInt32(&f.calls) }

func newTestService(t *testing.T, driver *fakeDriver) *Service {
	t.Helper()
	store, err := kv.Open(kv.Config{Path: t.TempDir(), Capacity: 10, TTLSeconds: 86400})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry := NewRegistry()
	worker := NewWorker(store, driver, registry)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go worker.Run(ctx)

	return &Service{
		Store:      store,
		Registry:   registry,
		Worker:     worker,
		Version:    "test",
		SDKVersion: "test-sdk",
		ProgramKey: func() string { return "0xdeadbeef" },
	}
}

func key1(t *testing.T) claimkey.Key {
	t.Helper()
	k, err := claimkey.New(
		"0xc62000000000000000000000000000000000000000000000000000000000561b",
		"0xb001000000000000000000000000000000000000000000000000000000005d5d",
	)
	require.NoError(t, err)
	return k
}

func key2(t *testing.T) claimkey.Key {
	t.Helper()
	k, err := claimkey.New(
		"0x0000000000000000000000000000000000000000000000000000000000000002",
		"0xb001000000000000000000000000000000000000000000000000000000005d5d",
	)
	require.NoError(t, err)
	return k
}

func waitForStatus(t *testing.T, svc *Service, key claimkey.Key, want Status, timeout time.Duration) GetWitnessResult {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		res, err := svc.GetWitness(key)
		require.NoError(t, err)
		if res.Status == want {
			return res
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for status %v, last was %v", want, res.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRequestWitnessHappyPath(t *testing.T) {
	driver := &fakeDriver{chunks: [][]byte{{1, 2}, {3}}}
	svc := newTestService(t, driver)
	key := key1(t)

	status, err := svc.RequestWitness(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, Processing, status)

	res := waitForStatus(t, svc, key, Completed, time.Second)
	require.Equal(t, [][]byte{{1, 2}, {3}}, res.Witness)
}

func TestRequestWitnessIdempotentDuringProcessing(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	driver := &fakeDriver{chunks: [][]byte{{1}}, derivedAt: func() {
		close(started)
		<-release
	}}
	svc := newTestService(t, driver)
	key := key1(t)

	status, err := svc.RequestWitness(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, Processing, status)

	<-started

	status2, err := svc.RequestWitness(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, Processing, status2)

	close(release)
	waitForStatus(t, svc, key, Completed, time.Second)
	require.Equal(t, int32(1), driver.callCount())
}

func TestRequestWitnessBusyConflict(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	driver := &fakeDriver{chunks: [][]byte{{1}}, derivedAt: func() {
		close(started)
		<-release
	}}
	svc := newTestService(t, driver)

	_, err := svc.RequestWitness(context.Background(), key1(t))
	require.NoError(t, err)
	<-started

	_, err = svc.RequestWitness(context.Background(), key2(t))
	require.Error(t, err)
	var conflict *ErrAlreadyInProgress
	require.ErrorAs(t, err, &conflict)

	close(release)
}

func TestRequestWitnessFailedRetry(t *testing.T) {
	driver := &fakeDriver{fail: true}
	svc := newTestService(t, driver)
	key := key1(t)

	_, err := svc.RequestWitness(context.Background(), key)
	require.NoError(t, err)

	waitForStatus(t, svc, key, Failed, time.Second)

	driver.mu.Lock()
	driver.fail = false
	driver.chunks = [][]byte{{9}}
	driver.mu.Unlock()

	status, err := svc.RequestWitness(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, Processing, status)

	res := waitForStatus(t, svc, key, Completed, time.Second)
	require.Equal(t, [][]byte{{9}}, res.Witness)
}

func TestGetWitnessUnknownKeyIsNone(t *testing.T) {
	svc := newTestService(t, &fakeDriver{})
	res, err := svc.GetWitness(key1(t))
	require.NoError(t, err)
	require.Equal(t, None, res.Status)
}
