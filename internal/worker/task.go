package worker

import (
	"context"
	"sync"

	"github.com/OCAP2/missioneditor/internal/cache"
)

// TaskFunc is the body of a background task. It reports progress through the
// counter and must return promptly once ctx is cancelled.
type TaskFunc[T any] func(ctx context.Context, progress *cache.SafeCounter) (T, error)

// Task runs a TaskFunc on its own goroutine. The frame loop polls it with
// Finished instead of blocking.
type Task[T any] struct {
	cancel   context.CancelFunc
	done     chan struct{}
	progress cache.SafeCounter

	mu     sync.Mutex
	result T
	err    error
}

// Start launches fn in the background.
func Start[T any](ctx context.Context, fn TaskFunc[T]) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()
		result, err := fn(ctx, &t.progress)
		t.mu.Lock()
		t.result, t.err = result, err
		t.mu.Unlock()
	}()

	return t
}

// Finished reports whether the task has returned.
func (t *Task[T]) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done is closed when the task returns.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome. Only meaningful once Finished is true.
func (t *Task[T]) Result() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Progress returns the current progress count.
func (t *Task[T]) Progress() int {
	return t.progress.Value()
}

// Cancel asks the task to stop. It does not wait.
func (t *Task[T]) Cancel() {
	t.cancel()
}

// Wait blocks until the task returns and yields its outcome.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.Result()
}
