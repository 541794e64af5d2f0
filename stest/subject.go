// Package stest contains utilities to drive streams by hand and to assert the
// outcomes reported by expectation chains.
package stest

import (
	"sync"

	"github.com/capatazlib/go-streamexpect/expect"
)

// Subject is a Source that is driven by hand: every value sent is delivered
// to the observers subscribed at that moment. Once the subject terminates,
// further signals are ignored and new subscribers get the terminal signal
// right away.
type Subject[T any] struct {
	// emitMux serializes deliveries, an observer never gets a value after the
	// terminal signal
	emitMux sync.Mutex

	mux       sync.Mutex
	observers map[int]expect.Observer[T]
	nextID    int
	done      bool
	err       error
}

// NewSubject creates a Subject with no subscribers
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{observers: make(map[int]expect.Observer[T])}
}

// Subscribe registers the observer
func (sub *Subject[T]) Subscribe(obs expect.Observer[T]) expect.Subscription {
	sub.emitMux.Lock()
	defer sub.emitMux.Unlock()
	return sub.subscribe(obs)
}

// subscribe must be called with the emit lock held
func (sub *Subject[T]) subscribe(obs expect.Observer[T]) expect.Subscription {
	sub.mux.Lock()
	if sub.done {
		err := sub.err
		sub.mux.Unlock()
		obs.Complete(err)
		return expect.SubscriptionFunc(func() {})
	}
	id := sub.nextID
	sub.nextID++
	sub.observers[id] = obs
	sub.mux.Unlock()

	return expect.SubscriptionFunc(func() {
		sub.mux.Lock()
		defer sub.mux.Unlock()
		delete(sub.observers, id)
	})
}

// snapshot returns the current observers, or nil when the subject is done
func (sub *Subject[T]) snapshot() []expect.Observer[T] {
	sub.mux.Lock()
	defer sub.mux.Unlock()
	if sub.done {
		return nil
	}
	acc := make([]expect.Observer[T], 0, len(sub.observers))
	for id := 0; id < sub.nextID; id++ {
		if obs, ok := sub.observers[id]; ok {
			acc = append(acc, obs)
		}
	}
	return acc
}

// Send delivers a value to every subscribed observer
func (sub *Subject[T]) Send(v T) {
	sub.emitMux.Lock()
	defer sub.emitMux.Unlock()
	for _, obs := range sub.snapshot() {
		obs.Next(v)
	}
}

// Complete terminates the subject, a nil error finishes it
func (sub *Subject[T]) Complete(err error) {
	sub.emitMux.Lock()
	defer sub.emitMux.Unlock()

	observers := sub.snapshot()

	sub.mux.Lock()
	if sub.done {
		sub.mux.Unlock()
		return
	}
	sub.done = true
	sub.err = err
	sub.observers = make(map[int]expect.Observer[T])
	sub.mux.Unlock()

	for _, obs := range observers {
		obs.Complete(err)
	}
}

// Finish terminates the subject without errors
func (sub *Subject[T]) Finish() {
	sub.Complete(nil)
}

// Fail terminates the subject with the given error
func (sub *Subject[T]) Fail(err error) {
	sub.Complete(err)
}

// Subscribers returns the number of observers currently subscribed
func (sub *Subject[T]) Subscribers() int {
	sub.mux.Lock()
	defer sub.mux.Unlock()
	return len(sub.observers)
}

////////////////////////////////////////////////////////////////////////////////

// CurrentValueSubject is a Subject that holds a value; new subscribers
// receive the current value before any other signal.
type CurrentValueSubject[T any] struct {
	Subject[T]
	current T
}

// NewCurrentValueSubject creates a CurrentValueSubject holding the given value
func NewCurrentValueSubject[T any](initial T) *CurrentValueSubject[T] {
	return &CurrentValueSubject[T]{
		Subject: Subject[T]{observers: make(map[int]expect.Observer[T])},
		current: initial,
	}
}

// Subscribe delivers the current value (unless the subject already
// terminated) and registers the observer
func (sub *CurrentValueSubject[T]) Subscribe(obs expect.Observer[T]) expect.Subscription {
	sub.emitMux.Lock()
	defer sub.emitMux.Unlock()

	sub.mux.Lock()
	done, current := sub.done, sub.current
	sub.mux.Unlock()

	if !done {
		obs.Next(current)
	}
	return sub.subscribe(obs)
}

// Send replaces the current value and delivers it to every observer
func (sub *CurrentValueSubject[T]) Send(v T) {
	sub.emitMux.Lock()
	defer sub.emitMux.Unlock()

	observers := sub.snapshot()
	if observers == nil {
		return
	}

	sub.mux.Lock()
	sub.current = v
	sub.mux.Unlock()

	for _, obs := range observers {
		obs.Next(v)
	}
}

// Value returns the current value
func (sub *CurrentValueSubject[T]) Value() T {
	sub.mux.Lock()
	defer sub.mux.Unlock()
	return sub.current
}

////////////////////////////////////////////////////////////////////////////////

// Never returns a Source that never emits nor terminates
func Never[T any]() expect.Source[T] {
	return expect.SourceFunc[T](func(expect.Observer[T]) expect.Subscription {
		return expect.SubscriptionFunc(func() {})
	})
}

// Empty returns a Source that finishes right away without values
func Empty[T any]() expect.Source[T] {
	return expect.FromSlice[T]()
}

// Fail returns a Source that fails right away with the given error
func Fail[T any](err error) expect.Source[T] {
	return expect.SourceFunc[T](func(obs expect.Observer[T]) expect.Subscription {
		obs.Complete(err)
		return expect.SubscriptionFunc(func() {})
	})
}
