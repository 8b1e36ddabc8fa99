package feed

import (
	"sync"
)

// Feed is a multi-subscriber broadcast channel for values of type T.
// The zero value is not usable; create feeds with New.
type Feed[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]func(T)
	nextID uint64

	onFirst func()
	onLast  func()
}

// New creates an empty feed.
func New[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[uint64]func(T))}
}

// OnFirst sets the hook fired when a subscribe transitions the feed
// from empty to non-empty. Set hooks before the first Subscribe.
func (f *Feed[T]) OnFirst(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFirst = fn
}

// OnLast sets the hook fired when an unsubscribe transitions the feed
// from non-empty to empty.
func (f *Feed[T]) OnLast(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onLast = fn
}

// Subscribe registers a callback and returns its subscription handle.
// If the feed was empty, the OnFirst hook fires synchronously before
// Subscribe returns; subscribing while non-empty fires nothing.
func (f *Feed[T]) Subscribe(fn func(T)) *Subscription {
	f.mu.Lock()
	wasEmpty := len(f.subs) == 0
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	onFirst := f.onFirst
	f.mu.Unlock()

	sub := &Subscription{feed: f.remove, id: id}

	if wasEmpty && onFirst != nil {
		onFirst()
	}
	return sub
}

// remove deletes a subscriber and fires OnLast on the non-empty to
// empty transition.
func (f *Feed[T]) remove(id uint64) {
	f.mu.Lock()
	if _, ok := f.subs[id]; !ok {
		f.mu.Unlock()
		return
	}
	delete(f.subs, id)
	nowEmpty := len(f.subs) == 0
	onLast := f.onLast
	f.mu.Unlock()

	if nowEmpty && onLast != nil {
		onLast()
	}
}

// Publish delivers value to every current subscriber, synchronously on
// the calling goroutine, in unspecified order.
func (f *Feed[T]) Publish(value T) {
	f.mu.Lock()
	callbacks := make([]func(T), 0, len(f.subs))
	for _, fn := range f.subs {
		callbacks = append(callbacks, fn)
	}
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(value)
	}
}

// SubscriberCount returns the number of live subscribers.
func (f *Feed[T]) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Subscription is the removal capability for one subscriber.
type Subscription struct {
	feed func(uint64)
	id   uint64
	once sync.Once
}

// Cancel removes the subscriber from its feed. Safe to call multiple
// times; only the first call has any effect.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.feed(s.id)
	})
}
