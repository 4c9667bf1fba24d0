package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

type fakeOutboxRepo struct {
	mu         sync.Mutex
	pending    []*usecase.OutboxEvent
	processing map[int64]*usecase.OutboxEvent
	processed  []int64
	failed     []int64
	requeued   int
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.ID = int64(len(f.pending) + len(f.processed) + 1)
	f.pending = append(f.pending, event)
	return event, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := min(limit, len(f.pending))
	batch := f.pending[:n]
	f.pending = f.pending[n:]
	if f.processing == nil {
		f.processing = make(map[int64]*usecase.OutboxEvent)
	}
	for _, ev := range batch {
		f.processing[ev.ID] = ev
	}
	return batch, nil
}

func (f *fakeOutboxRepo) Release(_ context.Context, id int64, maxAttempts int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.processing[id]
	if !ok {
		return nil
	}
	delete(f.processing, id)
	ev.Attempts++
	if ev.Attempts >= maxAttempts {
		f.failed = append(f.failed, id)
		return nil
	}
	f.pending = append(f.pending, ev)
	return nil
}

func (f *fakeOutboxRepo) RequeueStale(context.Context, time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued++
	return 0, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.processing, id)
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutboxRepo) processedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processed)
}

type fakeProducer struct {
	mu      sync.Mutex
	keys    []string
	failKey string
}

func (f *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Key == f.failKey {
		return errors.New("broker not available")
	}
	f.keys = append(f.keys, req.Key)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOutboxWorkerDrainsOnStart(t *testing.T) {
	repo := &fakeOutboxRepo{}
	for _, id := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io"} {
		_, _ = repo.Create(context.Background(), usecase.NewOutboxEvent(usecase.UserRegistered, id, []byte(id)))
	}
	producer := &fakeProducer{failKey: "c@x.io"}

	w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", 5, 0)
	w.Start(context.Background())
	waitFor(t, func() bool { return repo.processedCount() == 4 })
	w.Stop()

	repo.mu.Lock()
	if len(repo.pending) != 1 || repo.pending[0].AggregateID != "c@x.io" || repo.pending[0].Attempts != 1 {
		t.Errorf("failed event not released back to pending: %+v", repo.pending)
	}
	repo.mu.Unlock()

	producer.mu.Lock()
	defer producer.mu.Unlock()
	want := []string{"a@x.io", "b@x.io", "d@x.io", "e@x.io"}
	if len(producer.keys) != len(want) {
		t.Fatalf("published keys = %v", producer.keys)
	}
	for i, k := range want {
		if producer.keys[i] != k {
			t.Errorf("key %d = %q, want %q", i, producer.keys[i], k)
		}
	}
}

func TestOutboxWorkerPolls(t *testing.T) {
	repo := &fakeOutboxRepo{}
	producer := &fakeProducer{}

	w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", 10, 10*time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	_, _ = repo.Create(context.Background(), usecase.NewOutboxEvent(usecase.UserRegistered, "late@x.io", nil))
	waitFor(t, func() bool { return repo.processedCount() == 1 })
}

func TestOutboxWorkerGivesUpAfterMaxAttempts(t *testing.T) {
	repo := &fakeOutboxRepo{}
	_, _ = repo.Create(context.Background(), usecase.NewOutboxEvent(usecase.UserRegistered, "bad@x.io", nil))
	producer := &fakeProducer{failKey: "bad@x.io"}

	w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", 10, 5*time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	waitFor(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.failed) == 1 && repo.requeued > 0
	})
}

func TestOutboxWorkerStopIdempotent(t *testing.T) {
	w := NewOutboxWorker(&fakeOutboxRepo{}, logger.NewNopLogger(), &fakeProducer{}, "", 0, 0)
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

func TestIsRetryableError(t *testing.T) {
	if !isRetryableError(errors.New("dial tcp: connection refused")) {
		t.Error("connection refused must be retryable")
	}
	if isRetryableError(errors.New("message too large")) || isRetryableError(nil) {
		t.Error("unexpected retryable")
	}
}
