package batch

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

/*

Worker pool

*/

// A workerPool runs queued tasks on a fixed set of goroutines.
// The queue is buffered at twice the worker count, so bursts of
// submissions don't lockstep with task completion.
type workerPool struct {
	workers  int
	tasks    chan func()
	wg       sync.WaitGroup
	shutdown chan struct{}
	once     sync.Once
}

// errPoolClosed is returned on submission to a closed pool.
var errPoolClosed = errors.New("worker pool is closed")

// newWorkerPool starts the workers.  A count less than 1 means
// one worker per CPU.
func newWorkerPool(workers int) *workerPool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	wp := &workerPool{
		workers:  workers,
		tasks:    make(chan func(), workers*2),
		shutdown: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.work()
	}
	return wp
}

// work pulls tasks until the pool closes.
func (wp *workerPool) work() {
	defer wp.wg.Done()
	for {
		select {
		case task := <-wp.tasks:
			if task != nil {
				task()
			}
		case <-wp.shutdown:
			return
		}
	}
}

// submit queues one task.  It blocks while the queue is full, so
// a caller that must not stall should carry a cancelable context.
func (wp *workerPool) submit(ctx context.Context, task func()) error {
	select {
	case <-wp.shutdown:
		return errPoolClosed
	default:
	}
	select {
	case wp.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdown:
		return errPoolClosed
	}
}

// close stops the workers once their current tasks finish and
// waits for them to exit.  Closing twice is safe.
func (wp *workerPool) close() {
	wp.once.Do(func() {
		close(wp.shutdown)
		wp.wg.Wait()
	})
}
