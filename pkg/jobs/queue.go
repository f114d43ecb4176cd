package jobs

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job represents a queued background task. Higher priority jobs are
// dispatched first; jobs with equal priority run in enqueue order.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Priority int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// ErrQueueFull is returned when the queue is at capacity.
var ErrQueueFull = errors.New("queue full")

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers  int
	Capacity int
	Logger   *zap.Logger
}

type item struct {
	job Job
	seq uint64
}

type jobHeap []*item

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].job.Priority != h[j].job.Priority {
		return h[i].job.Priority > h[j].job.Priority
	}
	return h[i].seq < h[j].seq
}

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x interface{}) { *h = append(*h, x.(*item)) }

func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Queue is an in-memory priority job dispatcher backed by a bounded
// worker pool. A panicking handler does not take its worker down.
type Queue struct {
	name    string
	handler Handler

	workers  int
	capacity int
	logger   *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	heap    jobHeap
	seq     uint64
	running int
	started bool
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	q := &Queue{
		name:     name,
		handler:  handler,
		workers:  cfg.Workers,
		capacity: cfg.Capacity,
		logger:   cfg.Logger,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.wg.Add(1)
	go q.watchContext()
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers, "capacity", q.capacity)
}

// Stop cancels workers and waits for them to exit. Queued jobs that
// have not started are abandoned.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	cancel := q.cancel
	q.mu.Unlock()

	cancel()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// watchContext turns context cancellation into a wakeup for waiting
// workers, since cond.Wait cannot observe the context directly.
func (q *Queue) watchContext() {
	defer q.wg.Done()
	<-q.ctx.Done()
	q.mu.Lock()
	q.stopped = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Enqueue pushes a job onto the queue.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started || q.stopped {
		return fmt.Errorf("queue %s not running", q.name)
	}
	if len(q.heap) >= q.capacity {
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	q.seq++
	heap.Push(&q.heap, &item{job: job, seq: q.seq})
	q.cond.Signal()
	return nil
}

// Snapshot reports queue depth and worker occupancy.
type Snapshot struct {
	Pending int
	Running int
	Workers int
}

// Snapshot returns the current queue state.
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Snapshot{Pending: len(q.heap), Running: q.running, Workers: q.workers}
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		for len(q.heap) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if q.stopped {
			q.mu.Unlock()
			return
		}
		it := heap.Pop(&q.heap).(*item)
		q.running++
		q.mu.Unlock()

		q.execute(workerID, it.job)

		q.mu.Lock()
		q.running--
		q.mu.Unlock()
	}
}

func (q *Queue) execute(workerID int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Sugar().Errorw("job panicked", "queue", q.name, "worker", workerID, "job_id", job.ID, "type", job.Type, "panic", r)
		}
	}()

	if err := q.handler(q.ctx, job); err != nil {
		q.logger.Sugar().Errorw("job failed", "queue", q.name, "worker", workerID, "job_id", job.ID, "type", job.Type, "error", err)
	}
}
