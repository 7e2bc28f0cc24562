package witnessgen

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/kroma-network/sp1-proof-pipeline/internal/claimkey"
	"github.com/kroma-network/sp1-proof-pipeline/internal/derive"
	"github.com/kroma-network/sp1-proof-pipeline/internal/kv"
	"github.com/kroma-network/sp1-proof-pipeline/internal/metrics"
	"github.com/kroma-network/sp1-proof-pipeline/internal/witnesscodec"
)

// mailboxCapacity bounds how many accepted-but-not-yet-started enqueues
// can queue up before TryEnqueue's registry check (not this channel) turns
// additional requests away; in practice the registry keeps at most one key
// ever in flight, so the channel rarely holds more than one item.
const mailboxCapacity = 10

// Worker is the single dedicated derivation consumer. It never runs two
// derivations concurrently: one goroutine drains mailbox sequentially.
type Worker struct {
	store    *kv.Store
	driver   derive.Driver
	registry *Registry
	mailbox  chan claimkey.Key
}

func NewWorker(store *kv.Store, driver derive.Driver, registry *Registry) *Worker {
	return &Worker{
		store:    store,
		driver:   driver,
		registry: registry,
		mailbox:  make(chan claimkey.Key, mailboxCapacity),
	}
}

// Enqueue delivers key to the worker's mailbox. Callers must have already
// won the registry's single-flight slot via TryEnqueue.
func (w *Worker) Enqueue(key claimkey.Key) {
	w.mailbox <- key
}

// Run drains the mailbox until ctx is done. Intended to run on its own
// goroutine for the lifetime of the service.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case key := <-w.mailbox:
			w.process(ctx, key)
		}
	}
}

func (w *Worker) process(ctx context.Context, key claimkey.Key) {
	defer w.registry.MarkIdle()

	log.Info("derivation starting", "user_req_id", key.UserRequestID())

	chunks, err := w.driver.Derive(ctx, key)
	if err != nil {
		log.Error("derivation failed", "user_req_id", key.UserRequestID(), "err", err)
		metrics.WitnessJobsTotal.WithLabelValues("failed").Inc()
		if setErr := w.store.Set(key.Bytes(), emptySentinel); setErr != nil {
			log.Error("failed to persist failure sentinel", "user_req_id", key.UserRequestID(), "err", setErr)
		}
		return
	}

	serialized, err := witnesscodec.Serialize(chunks)
	if err != nil {
		log.Error("failed to serialize witness", "user_req_id", key.UserRequestID(), "err", err)
		metrics.WitnessJobsTotal.WithLabelValues("failed").Inc()
		if setErr := w.store.Set(key.Bytes(), emptySentinel); setErr != nil {
			log.Error("failed to persist failure sentinel", "user_req_id", key.UserRequestID(), "err", setErr)
		}
		return
	}

	if err := w.store.Set(key.Bytes(), serialized); err != nil {
		log.Error("failed to persist witness", "user_req_id", key.UserRequestID(), "err", err)
		metrics.WitnessJobsTotal.WithLabelValues("failed").Inc()
		return
	}
	metrics.WitnessJobsTotal.WithLabelValues("completed").Inc()
	log.Info("derivation completed", "user_req_id", key.UserRequestID(), "chunks", len(chunks))
}

// emptySentinel marks a failed derivation: a zero-length value, found=true,
// distinguishable from absent (found=false). A later requestWitness for
// the same key observes this sentinel and retries.
var emptySentinel = []byte{}
