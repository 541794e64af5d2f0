// Package r contains the event log shared by every expectation attached to a
// stream.
package r

import (
	"fmt"
	"sync"
)

////////////////////////////////////////////////////////////////////////////////

// Snapshot is an immutable view of the event log at a point in time. The
// values slice is shared with the Recorder but capped, so appends on the log
// never become visible through an existing Snapshot.
type Snapshot[T any] struct {
	values   []T
	terminal Terminal
}

// NewSnapshot builds a Snapshot out of the given values and terminal state
func NewSnapshot[T any](values []T, terminal Terminal) Snapshot[T] {
	return Snapshot[T]{values: values[:len(values):len(values)], terminal: terminal}
}

// Len returns the number of values recorded when the snapshot was taken
func (snap Snapshot[T]) Len() int {
	return len(snap.values)
}

// At returns the value at the given index
func (snap Snapshot[T]) At(i int) T {
	return snap.values[i]
}

// Values returns a copy of the recorded values
func (snap Snapshot[T]) Values() []T {
	return append(snap.values[:0:0], snap.values...)
}

// Head returns a copy of the first n recorded values, if n is greater than
// Len, all values are returned
func (snap Snapshot[T]) Head(n int) []T {
	if n > len(snap.values) {
		n = len(snap.values)
	}
	return append(snap.values[:0:0], snap.values[:n]...)
}

// Terminal returns the terminal state of the stream when the snapshot was
// taken
func (snap Snapshot[T]) Terminal() Terminal {
	return snap.terminal
}

// Drop returns a Snapshot without the first n values; the terminal state is
// kept.
func (snap Snapshot[T]) Drop(n int) Snapshot[T] {
	if n > len(snap.values) {
		n = len(snap.values)
	}
	return Snapshot[T]{values: snap.values[n:], terminal: snap.terminal}
}

// String returns an string representation for the Snapshot
func (snap Snapshot[T]) String() string {
	return fmt.Sprintf("Snapshot{values: %v, terminal: %s}", snap.values, snap.terminal)
}

////////////////////////////////////////////////////////////////////////////////

// Recorder accumulates every value a stream emits and its terminal signal.
//
// All mutations and the change notification run while holding the recorder
// lock; this is the single serialization point of an expectation chain. A
// notify function must not call back into the Recorder.
type Recorder[T any] struct {
	mux      sync.Mutex
	values   []T
	terminal Terminal
	notify   func(Snapshot[T])
}

// NewRecorder returns a Recorder that calls notify after every change on the
// log. notify may be nil.
func NewRecorder[T any](notify func(Snapshot[T])) *Recorder[T] {
	if notify == nil {
		notify = func(Snapshot[T]) {}
	}
	return &Recorder[T]{
		values: make([]T, 0, 16),
		notify: notify,
	}
}

// snapshot must be called with the lock held
func (rec *Recorder[T]) snapshot() Snapshot[T] {
	return NewSnapshot(rec.values, rec.terminal)
}

// Record appends a value to the log and notifies the change. Recording a
// value after the terminal signal is a protocol violation.
func (rec *Recorder[T]) Record(v T) {
	rec.mux.Lock()
	defer rec.mux.Unlock()

	if !rec.terminal.IsPending() {
		panic(NewProtocolViolation(
			"value emitted after terminal signal",
			rec.terminal,
			fmt.Sprintf("value: %v", v),
		))
	}

	rec.values = append(rec.values, v)
	rec.notify(rec.snapshot())
}

// RecordTerminal sets the terminal state of the log and notifies the change.
// The terminal state is write-once; a second call panics with a
// ProtocolViolationError.
func (rec *Recorder[T]) RecordTerminal(t Terminal) {
	rec.mux.Lock()
	defer rec.mux.Unlock()

	if t.IsPending() {
		panic(NewProtocolViolation("pending is not a terminal state", rec.terminal, ""))
	}

	if !rec.terminal.IsPending() {
		panic(NewProtocolViolation(
			"stream terminated twice",
			rec.terminal,
			fmt.Sprintf("second terminal: %s", t),
		))
	}

	rec.terminal = t
	rec.notify(rec.snapshot())
}

// Snapshot returns the current values and terminal state of the log
func (rec *Recorder[T]) Snapshot() Snapshot[T] {
	rec.mux.Lock()
	defer rec.mux.Unlock()
	return rec.snapshot()
}

// Do executes the given function with the current Snapshot while holding the
// recorder lock, no Record or RecordTerminal call can interleave with it.
func (rec *Recorder[T]) Do(fn func(Snapshot[T])) {
	rec.mux.Lock()
	defer rec.mux.Unlock()
	fn(rec.snapshot())
}
