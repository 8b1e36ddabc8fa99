package feed

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestFeedPublish(t *testing.T) {
	f := New[int]()

	var got []int
	sub := f.Subscribe(func(v int) { got = append(got, v) })
	defer sub.Cancel()

	f.Publish(1)
	f.Publish(2)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("received %v, want [1 2]", got)
	}
}

func TestFeedMultipleSubscribers(t *testing.T) {
	f := New[string]()

	var a, b int
	subA := f.Subscribe(func(string) { a++ })
	subB := f.Subscribe(func(string) { b++ })

	f.Publish("x")
	if a != 1 || b != 1 {
		t.Errorf("counts = %d/%d, want 1/1", a, b)
	}

	subA.Cancel()
	f.Publish("y")
	if a != 1 || b != 2 {
		t.Errorf("counts after cancel = %d/%d, want 1/2", a, b)
	}
	subB.Cancel()
}

func TestFeedTransitionHooks(t *testing.T) {
	f := New[int]()

	var first, last int
	f.OnFirst(func() { first++ })
	f.OnLast(func() { last++ })

	// Empty -> one subscriber fires OnFirst exactly once.
	subA := f.Subscribe(func(int) {})
	if first != 1 {
		t.Fatalf("OnFirst fired %d times after first subscribe, want 1", first)
	}

	// Second subscriber fires nothing.
	subB := f.Subscribe(func(int) {})
	if first != 1 || last != 0 {
		t.Fatalf("hooks = %d/%d after second subscribe, want 1/0", first, last)
	}

	// Removing one of two fires nothing.
	subA.Cancel()
	if last != 0 {
		t.Fatalf("OnLast fired with a subscriber remaining")
	}

	// Removing the last fires OnLast exactly once.
	subB.Cancel()
	if last != 1 {
		t.Fatalf("OnLast fired %d times, want 1", last)
	}

	// Resubscribing starts a new cycle.
	sub := f.Subscribe(func(int) {})
	if first != 2 {
		t.Errorf("OnFirst fired %d times after resubscribe, want 2", first)
	}
	sub.Cancel()
	if last != 2 {
		t.Errorf("OnLast fired %d times, want 2", last)
	}
}

func TestSubscriptionCancelIdempotent(t *testing.T) {
	f := New[int]()

	var last int
	f.OnLast(func() { last++ })

	sub := f.Subscribe(func(int) {})
	sub.Cancel()
	sub.Cancel()
	sub.Cancel()

	if last != 1 {
		t.Errorf("OnLast fired %d times, want 1", last)
	}
	if n := f.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
}

func TestFeedConcurrentSubscribeUnsubscribe(t *testing.T) {
	f := New[int]()

	var first, last atomic.Int32
	f.OnFirst(func() { first.Add(1) })
	f.OnLast(func() { last.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sub := f.Subscribe(func(int) {})
				f.Publish(j)
				sub.Cancel()
			}
		}()
	}
	wg.Wait()

	if n := f.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
	// Every empty->non-empty transition must pair with a non-empty->empty one.
	if first.Load() != last.Load() {
		t.Errorf("transition hooks unbalanced: first=%d last=%d", first.Load(), last.Load())
	}
	if first.Load() == 0 {
		t.Error("OnFirst never fired")
	}
}

func TestFeedHookMayUseFeed(t *testing.T) {
	f := New[int]()

	// A hook that touches the feed must not deadlock.
	var n int
	f.OnFirst(func() { n = f.SubscriberCount() })

	sub := f.Subscribe(func(int) {})
	defer sub.Cancel()

	if n != 1 {
		t.Errorf("SubscriberCount inside hook = %d, want 1", n)
	}
}
