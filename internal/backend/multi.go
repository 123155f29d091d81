package backend

import (
	"context"
	"sync"

	"github.com/tilecollapse/wfc/internal/solver"
	"golang.org/x/sync/errgroup"
)

// MultiThreaded runs queued tasks across a fixed pool of worker goroutines,
// fed by a channel the way internal/tile's pyramid generator feeds its
// per-zoom-level job channel, with shutdown coordinated through errgroup
// rather than a bare sync.WaitGroup. The task channel is bounded: it buffers
// four tasks per worker, and QueueTask blocks while that buffer is full.
// The output queue is unbounded.
type MultiThreaded struct {
	tasks chan *WfcTask

	mu       sync.Mutex
	cond     *sync.Cond
	outQueue []*WfcTask

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMultiThreaded starts workers workers, each pulling tasks off an
// internal queue until Close is called. workers is clamped to at least 1.
func NewMultiThreaded(workers int) *MultiThreaded {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	b := &MultiThreaded{
		tasks:  make(chan *WfcTask, workers*4),
		group:  g,
		ctx:    gctx,
		cancel: cancel,
	}
	b.cond = sync.NewCond(&b.mu)

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case task, ok := <-b.tasks:
					if !ok {
						return nil
					}
					task.run()
					b.mu.Lock()
					b.outQueue = append(b.outQueue, task)
					b.cond.Signal()
					b.mu.Unlock()
				}
			}
		})
	}
	return b
}

func (b *MultiThreaded) QueueTask(task *WfcTask) error {
	if b.ctx.Err() != nil {
		return &solver.ChannelClosed{}
	}
	select {
	case b.tasks <- task:
		return nil
	case <-b.ctx.Done():
		return &solver.ChannelClosed{}
	}
}

func (b *MultiThreaded) GetOutput() (*WfcTask, error, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.outQueue) == 0 {
		return nil, nil, false
	}
	t := b.outQueue[0]
	b.outQueue = b.outQueue[1:]
	return t, t.Err, true
}

func (b *MultiThreaded) WaitForOutput() (*WfcTask, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.outQueue) == 0 {
		b.cond.Wait()
	}
	t := b.outQueue[0]
	b.outQueue = b.outQueue[1:]
	return t, t.Err
}

// Clear drops any output not yet read and any queued-but-unstarted tasks.
// A task a worker already picked up keeps running and still lands in the
// output queue once done; Clear does not cancel in-flight solves.
func (b *MultiThreaded) Clear() {
	for {
		select {
		case <-b.tasks:
			continue
		default:
		}
		break
	}
	b.mu.Lock()
	b.outQueue = nil
	b.mu.Unlock()
}

// Close stops accepting new work, waits for in-flight tasks to finish, and
// tears down the worker pool. Queued-but-unstarted tasks are abandoned.
func (b *MultiThreaded) Close() error {
	b.cancel()
	return b.group.Wait()
}

var _ Backend = (*MultiThreaded)(nil)
