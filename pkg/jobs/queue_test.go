package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQueueDispatchesByPriorityThenFIFO(t *testing.T) {
	gate := make(chan struct{})
	var mu sync.Mutex
	var order []string

	handler := func(ctx context.Context, job Job) error {
		if job.ID == "blocker" {
			<-gate
			return nil
		}
		mu.Lock()
		order = append(order, job.ID)
		mu.Unlock()
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{Workers: 1, Capacity: 10, Logger: zap.NewNop()})
	q.Start(context.Background())
	defer q.Stop()

	// occupy the single worker so the rest queue up
	require.NoError(t, q.Enqueue(Job{ID: "blocker"}))
	require.Eventually(t, func() bool {
		return q.Snapshot().Running == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Enqueue(Job{ID: "low-1", Priority: 0}))
	require.NoError(t, q.Enqueue(Job{ID: "low-2", Priority: 0}))
	require.NoError(t, q.Enqueue(Job{ID: "high", Priority: 5}))

	close(gate)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"high", "low-1", "low-2"}, order)
}

func TestQueueRejectsWhenFull(t *testing.T) {
	gate := make(chan struct{})
	handler := func(ctx context.Context, job Job) error {
		<-gate
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{Workers: 1, Capacity: 2, Logger: zap.NewNop()})
	q.Start(context.Background())
	defer func() {
		close(gate)
		q.Stop()
	}()

	require.NoError(t, q.Enqueue(Job{ID: "running"}))
	require.Eventually(t, func() bool {
		return q.Snapshot().Running == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Enqueue(Job{ID: "pending-1"}))
	require.NoError(t, q.Enqueue(Job{ID: "pending-2"}))

	err := q.Enqueue(Job{ID: "overflow"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrQueueFull))
}

func TestQueueSurvivesPanickingJob(t *testing.T) {
	done := make(chan struct{})
	handler := func(ctx context.Context, job Job) error {
		if job.ID == "bad" {
			panic("boom")
		}
		close(done)
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{Workers: 1, Capacity: 10, Logger: zap.NewNop()})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "bad"}))
	require.NoError(t, q.Enqueue(Job{ID: "good"}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panicking job")
	}
}

func TestQueueSnapshotCountsPendingAndRunning(t *testing.T) {
	gate := make(chan struct{})
	handler := func(ctx context.Context, job Job) error {
		<-gate
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{Workers: 2, Capacity: 10, Logger: zap.NewNop()})
	q.Start(context.Background())
	defer func() {
		close(gate)
		q.Stop()
	}()

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job"}))
	}

	require.Eventually(t, func() bool {
		snap := q.Snapshot()
		return snap.Running == 2 && snap.Pending == 2
	}, time.Second, 5*time.Millisecond)

	snap := q.Snapshot()
	require.Equal(t, 2, snap.Workers)
}

func TestQueueEnqueueAfterStop(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{Workers: 1, Logger: zap.NewNop()})
	q.Start(context.Background())
	q.Stop()

	err := q.Enqueue(Job{ID: "late"})
	require.Error(t, err)
}
