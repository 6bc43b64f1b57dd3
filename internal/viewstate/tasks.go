package viewstate

import (
	"context"
	"sync"
)

// Tasks tracks the in-flight call of each logical operation of one controller.
// Beginning an operation again cancels the previous call and makes its ticket stale.
type Tasks struct {
	mu      sync.Mutex
	seq     map[string]uint64
	cancels map[string]context.CancelFunc
	closed  bool
}

// NewTasks creates an empty task registry
func NewTasks() *Tasks {
	return &Tasks{
		seq:     make(map[string]uint64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Ticket identifies one call of an operation
type Ticket struct {
	tasks *Tasks
	key   string
	seq   uint64
}

// Begin starts a new call of op, superseding any call still in flight
func (t *Tasks) Begin(ctx context.Context, op string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		cancel()
		return ctx, Ticket{tasks: t, key: op}
	}

	if prev, ok := t.cancels[op]; ok {
		prev()
	}
	t.seq[op]++
	t.cancels[op] = cancel

	return ctx, Ticket{tasks: t, key: op, seq: t.seq[op]}
}

// Cancel supersedes the in-flight call of op, if any
func (t *Tasks) Cancel(op string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cancel, ok := t.cancels[op]; ok {
		cancel()
		delete(t.cancels, op)
	}
	t.seq[op]++
}

// Close cancels everything in flight; later calls begin already stale
func (t *Tasks) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for op, cancel := range t.cancels {
		cancel()
		delete(t.cancels, op)
	}
	t.closed = true
}

// Current reports whether this is still the latest call of its operation
func (tk Ticket) Current() bool {
	if tk.tasks == nil {
		return false
	}
	tk.tasks.mu.Lock()
	defer tk.tasks.mu.Unlock()
	return !tk.tasks.closed && tk.seq != 0 && tk.tasks.seq[tk.key] == tk.seq
}

// Done releases the call's context. It must be called once the call finished.
func (tk Ticket) Done() {
	if tk.tasks == nil {
		return
	}
	tk.tasks.mu.Lock()
	defer tk.tasks.mu.Unlock()

	if tk.seq != 0 && tk.tasks.seq[tk.key] == tk.seq {
		if cancel, ok := tk.tasks.cancels[tk.key]; ok {
			cancel()
			delete(tk.tasks.cancels, tk.key)
		}
	}
}
