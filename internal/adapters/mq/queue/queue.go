// Package queue provides the bounded in-memory pipeline carrying outfit
// snapshots from queue joins to the ghost pool. Enqueue never blocks the
// join path; snapshots are best effort and a full pipeline drops them.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/pkg/metrics"
)

const (
	defaultCapacity   = 1024
	defaultBufferSize = 1024
)

// Snapshot is the payload type flowing through the pipeline.
type Snapshot = model.Snapshot

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a snapshot. Returns false when the pipeline is full
	// or closed and the snapshot was dropped.
	Enqueue(ctx context.Context, snap Snapshot) bool

	// Dequeue returns a channel receiving snapshots as they arrive.
	// The channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Snapshot

	// Len returns the current number of queued snapshots.
	Len(ctx context.Context) int

	// Close stops the pipeline. Enqueues after Close are dropped.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	snapshots  chan Snapshot
	capacity   int
	bufferSize int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates an in-memory pipeline.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultCapacity,
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.snapshots = make(chan Snapshot, q.bufferSize)

	metrics.UpdateIngestCapacity(q.capacity)
	metrics.UpdateIngestDepth(0)
	metrics.UpdateIngestUtilization(0)
	return q
}

// Enqueue adds a snapshot to the pipeline.
func (q *InMemoryQueue) Enqueue(ctx context.Context, snap Snapshot) bool {
	start := time.Now()
	defer func() {
		metrics.RecordIngestLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || len(q.snapshots) >= q.capacity {
		metrics.RecordIngestDrop()
		return false
	}

	select {
	case q.snapshots <- snap:
		metrics.RecordIngestEnqueue()
		q.observeDepth()
		return true
	case <-ctx.Done():
		metrics.RecordIngestDrop()
		return false
	default:
		metrics.RecordIngestDrop()
		return false
	}
}

// Dequeue returns a channel receiving snapshots as they arrive.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		for snap := range q.snapshots {
			select {
			case out <- snap:
				metrics.RecordIngestDequeue()
				q.observeDepth()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued snapshots.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.snapshots)
	q.observeDepth()
	return size
}

// Close stops the pipeline.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.snapshots)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observeDepth() {
	depth := len(q.snapshots)
	metrics.UpdateIngestDepth(depth)
	metrics.UpdateIngestUtilization(float64(depth) / float64(q.capacity))
}
