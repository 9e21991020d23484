// Package worker drains the snapshot pipeline into the ghost pool.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/pkg/logger"
	"github.com/fitrate/arena/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
)

// Adder absorbs snapshots into the ghost pool.
type Adder interface {
	Add(ctx context.Context, snap model.Snapshot) error
}

// Queue defines how workers receive snapshots.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Snapshot
}

// Worker drains snapshots until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker after in-flight work.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker over the in-process pipeline.
type InMemoryWorker struct {
	queue Queue
	adder Adder
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, adder Adder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		adder:    adder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	snapChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case snap, ok := <-snapChan:
			if !ok {
				return
			}
			if err := w.absorb(ctx, snap); err != nil {
				w.logger.Error(ctx, "snapshot rejected", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) absorb(ctx context.Context, snap model.Snapshot) error {
	if err := w.adder.Add(ctx, snap); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "pool_add")
		return fmt.Errorf("absorb snapshot for %s: %w", snap.UserID, err)
	}
	return nil
}

// Pool manages multiple workers draining one pipeline.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive count sizes the pool
// from the CPU count.
func NewPool(workerCount int, queue Queue, adder Adder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(queue, adder, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.reportMetrics(ctx)
}

func (p *Pool) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			metrics.UpdateWorkerActiveCount(len(p.workers))
		}
	}
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		close(w.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the pipeline, then stops all workers so buffered
// snapshots drain before the pool dies.
func (p *Pool) Shutdown(ctx context.Context) error {
	select {
	case <-p.shutdown:
	default:
		close(p.shutdown)
	}

	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing pipeline", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		for _, w := range p.workers {
			<-w.done
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "pool shutdown timed out")
		return fmt.Errorf("pool shutdown timed out: %w", ctx.Err())
	}
}
