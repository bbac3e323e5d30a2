package services

import (
	"context"
	"sync"
)

// TaskHandle is the owning token of a running background task
type TaskHandle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func newTaskHandle(cancel context.CancelFunc) *TaskHandle {
	return &TaskHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancel requests the task to stop. It does not wait.
func (h *TaskHandle) Cancel() {
	h.cancel()
}

// Done is closed once the task has returned
func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task returns or ctx expires. A task stopped by
// Cancel returns nil.
func (h *TaskHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *TaskHandle) finish(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	close(h.done)
}
