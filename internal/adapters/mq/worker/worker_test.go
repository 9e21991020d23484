package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	queue "github.com/fitrate/arena/internal/adapters/mq/queue"
	worker "github.com/fitrate/arena/internal/adapters/mq/worker"
	model "github.com/fitrate/arena/internal/domain/model"
	logging "github.com/fitrate/arena/pkg/logger"
)

// Mock implementations for testing.
type mockQueue struct {
	snapChan chan model.Snapshot
	closeErr error
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		snapChan: make(chan model.Snapshot, 10),
	}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan model.Snapshot {
	return mq.snapChan
}

func (mq *mockQueue) Close() error {
	close(mq.snapChan)
	return mq.closeErr
}

func (mq *mockQueue) addSnapshot(snap model.Snapshot) {
	mq.snapChan <- snap
}

type mockAdder struct {
	added  map[string]model.Snapshot
	errors map[string]error
	mu     sync.RWMutex
}

func newMockAdder() *mockAdder {
	return &mockAdder{
		added:  make(map[string]model.Snapshot),
		errors: make(map[string]error),
	}
}

func (ma *mockAdder) Add(_ context.Context, snap model.Snapshot) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	if err, exists := ma.errors[snap.UserID]; exists {
		return err
	}
	ma.added[snap.UserID] = snap
	return nil
}

func (ma *mockAdder) setError(userID string, err error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.errors[userID] = err
}

func (ma *mockAdder) get(userID string) (model.Snapshot, bool) {
	ma.mu.RLock()
	defer ma.mu.RUnlock()
	snap, exists := ma.added[userID]
	return snap, exists
}

func (ma *mockAdder) count() int {
	ma.mu.RLock()
	defer ma.mu.RUnlock()
	return len(ma.added)
}

func snapFor(userID string, score float64) model.Snapshot {
	return model.Snapshot{
		UserID:    userID,
		Score:     score,
		Thumbnail: "thumb-" + userID,
		Mode:      "drip",
		TakenAt:   time.Now(),
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		mq := newMockQueue()
		adder := newMockAdder()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(mq, adder)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(mq, adder, worker.WithName("test-worker"))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when a snapshot arrives", func() {
				mq.addSnapshot(snapFor("u1", 77))
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it lands in the ghost pool", func() {
					snap, added := adder.get("u1")
					convey.So(added, convey.ShouldBeTrue)
					convey.So(snap.Score, convey.ShouldEqual, 77)
				})
			})

			convey.Convey("And when the pool rejects a snapshot", func() {
				adder.setError("u2", errors.New("pool rejected"))
				mq.addSnapshot(snapFor("u2", 50))
				mq.addSnapshot(snapFor("u3", 60))
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the worker keeps draining", func() {
					_, added := adder.get("u2")
					convey.So(added, convey.ShouldBeFalse)
					_, added = adder.get("u3")
					convey.So(added, convey.ShouldBeTrue)
				})
			})

			convey.Convey("And when shut down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()

				err := w.Shutdown(shutdownCtx)

				convey.Convey("Then shutdown completes cleanly", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool over a real pipeline", t, func() {
		_ = logging.Init()

		pipeline := queue.NewInMemoryQueue(queue.WithCapacity(100))
		adder := newMockAdder()
		pool := worker.NewPool(4, pipeline, adder)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When snapshots flow through", func() {
			for i := 0; i < 20; i++ {
				ok := pipeline.Enqueue(ctx, snapFor(fmt.Sprintf("u%d", i), float64(i)))
				convey.So(ok, convey.ShouldBeTrue)
			}
			time.Sleep(100 * time.Millisecond)

			convey.Convey("Then every snapshot reaches the pool", func() {
				convey.So(adder.count(), convey.ShouldEqual, 20)
			})

			convey.Convey("And when the pool shuts down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutdownCancel()

				err := pool.Shutdown(shutdownCtx)

				convey.Convey("Then buffered snapshots are drained first", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(pipeline.IsClosed(), convey.ShouldBeTrue)
				})
			})
		})
	})
}
