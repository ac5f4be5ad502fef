// Package limiter bounds concurrent provider calls with a FIFO
// admission queue.
package limiter

import (
	"container/list"
	"context"
	"errors"
	"sync"
)

// ErrQueueFull is returned when both the in-flight slots and the waiting
// queue are exhausted.
var ErrQueueFull = errors.New("admission queue full")

// Limiter admits at most maxInflight concurrent holders and queues up to
// queueCap waiters in strict FIFO order.
type Limiter struct {
	mu          sync.Mutex
	inflight    int
	maxInflight int
	queueCap    int
	waiters     *list.List // of chan struct{}
}

func New(maxInflight, queueCap int) *Limiter {
	if maxInflight < 1 {
		maxInflight = 1
	}
	if queueCap < 0 {
		queueCap = 0
	}
	return &Limiter{
		maxInflight: maxInflight,
		queueCap:    queueCap,
		waiters:     list.New(),
	}
}

// Admit blocks until a slot is free or ctx is done. A cancelled wait is
// removed from the queue without side effects.
func (l *Limiter) Admit(ctx context.Context) error {
	l.mu.Lock()
	if l.inflight < l.maxInflight {
		l.inflight++
		l.mu.Unlock()
		return nil
	}
	if l.waiters.Len() >= l.queueCap {
		l.mu.Unlock()
		return ErrQueueFull
	}

	grant := make(chan struct{})
	el := l.waiters.PushBack(grant)
	l.mu.Unlock()

	select {
	case <-grant:
		// The releasing holder transferred its slot to us.
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		select {
		case <-grant:
			// Granted while cancelling; hand the slot onward.
			l.mu.Unlock()
			l.Release()
		default:
			l.waiters.Remove(el)
			l.mu.Unlock()
		}
		return ctx.Err()
	}
}

// Release frees a slot, waking the oldest waiter if any. The slot
// transfers directly so FIFO order is preserved.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if front := l.waiters.Front(); front != nil {
		l.waiters.Remove(front)
		close(front.Value.(chan struct{}))
		return
	}
	if l.inflight > 0 {
		l.inflight--
	}
}

// InFlight reports the number of admitted holders.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight
}

// QueueLen reports the number of queued waiters.
func (l *Limiter) QueueLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waiters.Len()
}
