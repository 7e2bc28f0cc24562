package proverproxy

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
	"github.com/kroma-network/sp1-proof-pipeline/internal/kv"
	"github.com/kroma-network/sp1-proof-pipeline/internal/remoteprover"
)

func openTestRegistry(t *testing.T) (*Registry, *remoteprover.Fake) {
	t.Helper()
	store, err := kv.Open(kv.Config{Path: t.TempDir(), Capacity: 10, TTLSeconds: 86400})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	fake := remoteprover.NewFake()
	return NewRegistry(store, fake), fake
}

func testKey(t *testing.T) claimkey.Key {
	t.Helper()
	k, err := claimkey.New(
		"0xc62000000000000000000000000000000000000000000000000000000000561b",
		"0xb001000000000000000000000000000000000000000000000000000000005d5d",
	)
	require.NoError(t, err)
	return k
}

func TestRequestProveSubmitsOnce(t *testing.T) {
	reg, fake := openTestRegistry(t)
	key := testKey(t)
	ctx := context.Background()

	res, err := reg.RequestProve(ctx, key, []byte("pk"), [][]byte{{1}})
	require.NoError(t, err)
	require.Equal(t, Processing, res.Status)
	require.NotEmpty(t, res.RequestID)
	require.True(t, res.Submitted, "first call must report a fresh submission")

	res2, err := reg.RequestProve(ctx, key, []byte("pk"), [][]byte{{1}})
	require.NoError(t, err)
	require.Equal(t, Processing, res2.Status)
	require.Equal(t, res.RequestID, res2.RequestID)
	require.False(t, res2.Submitted, "second call must not report a fresh submission")

	require.Equal(t, 1, fake.SubmitCount())
}

func TestGetProofHappyPath(t *testing.T) {
	reg, fake := openTestRegistry(t)
	key := testKey(t)
	ctx := context.Background()

	res, err := reg.RequestProve(ctx, key, []byte("pk"), [][]byte{{1}})
	require.NoError(t, err)

	fake.SetResult(res.RequestID, remoteprover.PollResult{
		Status: remoteprover.Fulfilled,
		Proof:  remoteprover.Proof{PublicValues: []byte("pub"), ProofBytes: []byte("proof")},
	})

	got, err := reg.GetProof(ctx, key)
	require.NoError(t, err)
	require.Equal(t, Completed, got.Status)
	require.Equal(t, []byte("pub"), got.Proof.PublicValues)
	require.Equal(t, []byte("proof"), got.Proof.ProofBytes)
}

func TestRequestProveShortCircuitsOnceCached(t *testing.T) {
	reg, fake := openTestRegistry(t)
	key := testKey(t)
	ctx := context.Background()

	res, err := reg.RequestProve(ctx, key, []byte("pk"), [][]byte{{1}})
	require.NoError(t, err)
	fake.SetResult(res.RequestID, remoteprover.PollResult{
		Status: remoteprover.Fulfilled,
		Proof:  remoteprover.Proof{PublicValues: []byte("pub"), ProofBytes: []byte("proof")},
	})
	_, err = reg.GetProof(ctx, key)
	require.NoError(t, err)

	again, err := reg.RequestProve(ctx, key, []byte("pk"), [][]byte{{1}})
	require.NoError(t, err)
	require.Equal(t, Completed, again.Status)
	require.False(t, again.Submitted, "cached short-circuit must not report a fresh submission")
	require.Equal(t, 1, fake.SubmitCount())
}

func TestGetProofUnclaimedIsFailed(t *testing.T) {
	reg, fake := openTestRegistry(t)
	key := testKey(t)
	ctx := context.Background()

	res, err := reg.RequestProve(ctx, key, []byte("pk"), [][]byte{{1}})
	require.NoError(t, err)
	fake.SetResult(res.RequestID, remoteprover.PollResult{Status: remoteprover.Unclaimed, Reason: "timed out"})

	got, err := reg.GetProof(ctx, key)
	require.NoError(t, err)
	require.Equal(t, Failed, got.Status)
	require.Equal(t, "timed out", got.Reason)
}

func TestGetProofUnknownKeyIsNone(t *testing.T) {
	reg, _ := openTestRegistry(t)
	key := testKey(t)

	got, err := reg.GetProof(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, None, got.Status)
}

func TestConcurrentRequestProveSubmitsExactlyOnce(t *testing.T) {
	reg, fake := openTestRegistry(t)
	key := testKey(t)
	ctx := context.Background()

	const n = 20
	var succeeded atomic.Int64
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := reg.RequestProve(ctx, key, []byte("pk"), [][]byte{{1}})
			require.NoError(t, err)
			succeeded.Add(1)
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	require.Equal(t, int64(n), succeeded.Load())
	require.Equal(t, 1, fake.SubmitCount())
}
