package backend

import "sync"

// SingleThreaded runs every task inline, on the calling goroutine, at
// QueueTask time. It exists both as the simple default and as a baseline
// for determinism tests against MultiThreaded.
type SingleThreaded struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []*WfcTask
}

// NewSingleThreaded returns a ready-to-use SingleThreaded backend.
func NewSingleThreaded() *SingleThreaded {
	b := &SingleThreaded{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *SingleThreaded) QueueTask(task *WfcTask) error {
	task.run()
	b.mu.Lock()
	b.queue = append(b.queue, task)
	b.cond.Signal()
	b.mu.Unlock()
	return nil
}

func (b *SingleThreaded) GetOutput() (*WfcTask, error, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, nil, false
	}
	t := b.queue[0]
	b.queue = b.queue[1:]
	return t, t.Err, true
}

func (b *SingleThreaded) WaitForOutput() (*WfcTask, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue) == 0 {
		b.cond.Wait()
	}
	t := b.queue[0]
	b.queue = b.queue[1:]
	return t, t.Err
}

func (b *SingleThreaded) Clear() {
	b.mu.Lock()
	b.queue = nil
	b.mu.Unlock()
}

var _ Backend = (*SingleThreaded)(nil)
