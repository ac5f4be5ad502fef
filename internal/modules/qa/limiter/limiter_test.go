package limiter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAdmitImmediate(t *testing.T) {
	l := New(2, 0)
	ctx := context.Background()
	if err := l.Admit(ctx); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	if err := l.Admit(ctx); err != nil {
		t.Fatalf("second admit: %v", err)
	}
	if got := l.InFlight(); got != 2 {
		t.Fatalf("inflight = %d, want 2", got)
	}
}

func TestQueueFull(t *testing.T) {
	l := New(1, 1)
	ctx := context.Background()
	if err := l.Admit(ctx); err != nil {
		t.Fatalf("admit: %v", err)
	}

	waiting := make(chan error, 1)
	go func() {
		waiting <- l.Admit(ctx)
	}()
	waitForQueueLen(t, l, 1)

	if err := l.Admit(ctx); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	l.Release()
	if err := <-waiting; err != nil {
		t.Fatalf("queued admit: %v", err)
	}
}

func TestReleaseTransfersSlotFIFO(t *testing.T) {
	l := New(1, 4)
	ctx := context.Background()
	if err := l.Admit(ctx); err != nil {
		t.Fatalf("admit: %v", err)
	}

	const waiters = 3
	order := make(chan int, waiters)
	var launched sync.WaitGroup
	for i := 0; i < waiters; i++ {
		i := i
		launched.Add(1)
		go func() {
			launched.Done()
			if err := l.Admit(ctx); err != nil {
				t.Errorf("waiter %d: %v", i, err)
				return
			}
			order <- i
			l.Release()
		}()
		// Queue in a known order.
		waitForQueueLen(t, l, i+1)
	}
	launched.Wait()

	l.Release()
	for want := 0; want < waiters; want++ {
		select {
		case got := <-order:
			if got != want {
				t.Fatalf("FIFO violated: got waiter %d, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for waiter %d", want)
		}
	}
}

func TestAdmitCancelledWhileQueued(t *testing.T) {
	l := New(1, 2)
	if err := l.Admit(context.Background()); err != nil {
		t.Fatalf("admit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- l.Admit(ctx) }()
	waitForQueueLen(t, l, 1)

	cancel()
	if err := <-result; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := l.QueueLen(); got != 0 {
		t.Fatalf("cancelled waiter must leave the queue, len=%d", got)
	}

	// The held slot is still usable afterwards.
	l.Release()
	if err := l.Admit(context.Background()); err != nil {
		t.Fatalf("admit after cancel: %v", err)
	}
}

func TestReleaseWithoutWaitersFreesSlot(t *testing.T) {
	l := New(1, 0)
	if err := l.Admit(context.Background()); err != nil {
		t.Fatalf("admit: %v", err)
	}
	l.Release()
	if got := l.InFlight(); got != 0 {
		t.Fatalf("inflight = %d, want 0", got)
	}
}

func waitForQueueLen(t *testing.T, l *Limiter, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if l.QueueLen() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("queue never reached length %d", want)
}
