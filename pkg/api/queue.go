package api

import (
	"context"
	"sync"
)

// completionQueue holds async completions until the session's owner
// drains them. It is the only part of a session safe to touch from other
// goroutines.
type completionQueue struct {
	mu    sync.Mutex
	funcs []func()
	ready chan struct{}
}

func newCompletionQueue() *completionQueue {
	return &completionQueue{ready: make(chan struct{}, 1)}
}

func (q *completionQueue) push(f func()) {
	q.mu.Lock()
	q.funcs = append(q.funcs, f)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *completionQueue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	funcs := q.funcs
	q.funcs = nil
	return funcs
}

// dispatch hands f to the configured Dispatcher, or queues it for
// RunPending when there is none.
func (s *Session) dispatch(f func()) {
	if s.opts.Dispatcher != nil {
		s.opts.Dispatcher(f)
		return
	}
	s.pending.push(f)
}

// RunPending runs the queued async completions on the calling goroutine
// and reports how many ran. Sessions created with a Dispatcher never
// queue anything.
func (s *Session) RunPending() int {
	n := 0
	for {
		funcs := s.pending.take()
		if len(funcs) == 0 {
			return n
		}
		for _, f := range funcs {
			f()
		}
		n += len(funcs)
	}
}

// WaitPending blocks until at least one async completion is queued, then
// runs everything queued like RunPending.
func (s *Session) WaitPending(ctx context.Context) (int, error) {
	for {
		if n := s.RunPending(); n > 0 {
			return n, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.pending.ready:
		}
	}
}
