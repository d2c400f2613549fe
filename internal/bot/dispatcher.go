package bot

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrDispatcherStopped is returned by Submit after Stop.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

type job func(ctx context.Context)

// Dispatcher runs jobs on a fixed set of workers. Jobs with the same key
// always land on the same worker and run in submission order.
type Dispatcher struct {
	queues []chan job
	wg     sync.WaitGroup
	log    *zap.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewDispatcher creates workers queues of queueSize jobs each.
func NewDispatcher(workers, queueSize int, log *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	queues := make([]chan job, workers)
	for i := range queues {
		queues[i] = make(chan job, queueSize)
	}
	return &Dispatcher{queues: queues, log: log}
}

// Start launches the workers. Jobs receive ctx without its cancellation so
// turns already queued still finish during shutdown.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	jobCtx := context.WithoutCancel(ctx)
	for i, queue := range d.queues {
		d.wg.Add(1)
		go d.work(jobCtx, i, queue)
	}
}

func (d *Dispatcher) work(ctx context.Context, id int, queue <-chan job) {
	defer d.wg.Done()
	for fn := range queue {
		d.run(ctx, id, fn)
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, fn job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("job panicked", zap.Int("worker", id), zap.Any("panic", r))
		}
	}()
	fn(ctx)
}

// Submit queues fn on the worker owning key. It blocks while that worker's
// queue is full, until ctx is done.
func (d *Dispatcher) Submit(ctx context.Context, key int64, fn func(ctx context.Context)) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.queues[d.slot(key)] <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) slot(key int64) int {
	return int(uint64(key) % uint64(len(d.queues)))
}

// Stop rejects new jobs and waits for queued ones to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
