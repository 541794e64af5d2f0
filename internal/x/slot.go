package x

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/capatazlib/go-streamexpect/internal/r"
)

// verdict is the result of evaluating an expectation against a Snapshot
type verdict struct {
	// decided is false when the log does not contain enough information yet
	decided bool
	// err is nil when the expectation passed
	err error
	// consumed is the number of values the verdict was based on
	consumed int
}

var undecided = verdict{}

// evaluator holds the kind-specific logic of a Slot
type evaluator[T any] interface {
	eval(snap r.Snapshot[T]) verdict
	// consumes is the number of values a decided verdict is based on
	consumes(snap r.Snapshot[T]) int
}

// valueEval checks the first value of the stream
type valueEval[T any] struct {
	pred Predicate[T]
}

func (e valueEval[T]) consumes(snap r.Snapshot[T]) int {
	return min(snap.Len(), 1)
}

func (e valueEval[T]) eval(snap r.Snapshot[T]) verdict {
	if snap.Len() >= 1 {
		return verdict{decided: true, err: e.pred.Check("first value", snap.At(0)), consumed: 1}
	}
	if !snap.Terminal().IsPending() {
		return verdict{
			decided: true,
			err:     &PrematureTerminationError{want: 1, got: 0, terminal: snap.Terminal()},
		}
	}
	return undecided
}

// collectedEval checks the first arity values of the stream as a group
type collectedEval[T any] struct {
	arity int
	pred  Predicate[[]T]
}

func (e collectedEval[T]) consumes(snap r.Snapshot[T]) int {
	return min(snap.Len(), e.arity)
}

func (e collectedEval[T]) eval(snap r.Snapshot[T]) verdict {
	if snap.Len() >= e.arity {
		return verdict{
			decided:  true,
			err:      e.pred.Check(fmt.Sprintf("first %d values", e.arity), snap.Head(e.arity)),
			consumed: e.arity,
		}
	}
	if !snap.Terminal().IsPending() {
		return verdict{
			decided:  true,
			err:      &PrematureTerminationError{want: e.arity, got: snap.Len(), terminal: snap.Terminal()},
			consumed: snap.Len(),
		}
	}
	return undecided
}

// completionEval checks the terminal state of the stream
type completionEval[T any] struct {
	pred Predicate[r.Terminal]
}

func (e completionEval[T]) consumes(snap r.Snapshot[T]) int {
	return snap.Len()
}

func (e completionEval[T]) eval(snap r.Snapshot[T]) verdict {
	if snap.Terminal().IsPending() {
		return undecided
	}
	return verdict{
		decided:  true,
		err:      e.pred.Check("completion", snap.Terminal()),
		consumed: snap.Len(),
	}
}

// failureEval checks the error a stream failed with
type failureEval[T any] struct {
	pred Predicate[error]
}

func (e failureEval[T]) consumes(snap r.Snapshot[T]) int {
	return snap.Len()
}

func (e failureEval[T]) eval(snap r.Snapshot[T]) verdict {
	term := snap.Terminal()
	switch term.GetTag() {
	case r.Pending:
		return undecided
	case r.Finished:
		return verdict{
			decided:  true,
			err:      &WrongCompletionError{want: r.Failed, got: term},
			consumed: snap.Len(),
		}
	default:
		return verdict{
			decided:  true,
			err:      e.pred.Check("stream error", term.Err()),
			consumed: snap.Len(),
		}
	}
}

////////////////////////////////////////////////////////////////////////////////

// Resolvable is the type-independent view of a Slot used by waiters and
// reporters
type Resolvable interface {
	// GetKind returns the Kind of the slot
	GetKind() Kind
	// Done returns a channel that gets closed when the slot resolves
	Done() <-chan struct{}
	// Expire resolves the slot as TimedOut if it is still unresolved
	Expire(after time.Duration) bool
	// Outcome returns the current state of the slot
	Outcome() Outcome
	// MarkReported returns true only the first time it is called
	MarkReported() bool
}

// Slot is one declared expectation over a stream. It resolves at most once;
// once resolved, further evaluations are ignored.
type Slot[T any] struct {
	kind     Kind
	location Location
	eval     evaluator[T]

	mux      sync.Mutex
	status   Status
	err      error
	consumed int
	doneCh   chan struct{}
	reported atomic.Bool

	onResolve func(Outcome)
}

func newSlot[T any](kind Kind, loc Location, eval evaluator[T]) *Slot[T] {
	return &Slot[T]{
		kind:     kind,
		location: loc,
		eval:     eval,
		doneCh:   make(chan struct{}),
	}
}

// NewValue creates a slot that checks the first value equals expected
func NewValue[T any](loc Location, expected T) *Slot[T] {
	return newSlot[T](SingleValue, loc, valueEval[T]{pred: Equal(expected)})
}

// NewValuePredicate creates a slot that checks the first value satisfies the
// given predicate
func NewValuePredicate[T any](loc Location, pred Predicate[T]) *Slot[T] {
	return newSlot[T](SingleValuePredicate, loc, valueEval[T]{pred: pred})
}

// NewCollected creates a slot that checks the first len(expected) values are
// equal to expected
func NewCollected[T any](loc Location, expected []T) *Slot[T] {
	expected = append(expected[:0:0], expected...)
	return newSlot[T](Collected, loc, collectedEval[T]{arity: len(expected), pred: Equal(expected)})
}

// NewCollectedPredicate creates a slot that checks the first arity values
// satisfy the given predicate. It panics if arity is negative.
func NewCollectedPredicate[T any](loc Location, arity int, pred Predicate[[]T]) *Slot[T] {
	if arity < 0 {
		panic(fmt.Sprintf("invalid arity %d; check NewCollectedPredicate call at %s", arity, loc))
	}
	return newSlot[T](CollectedPredicate, loc, collectedEval[T]{arity: arity, pred: pred})
}

// NewCompletion creates a slot that passes once the stream terminates
func NewCompletion[T any](loc Location) *Slot[T] {
	return newSlot[T](CompletionAny, loc, completionEval[T]{pred: AnyP[r.Terminal]{}})
}

// NewCompletionKind creates a slot that checks the stream terminates with the
// given tag
func NewCompletionKind[T any](loc Location, tag r.TerminalTag) *Slot[T] {
	if tag == r.Pending {
		panic(fmt.Sprintf("Pending is not a completion kind; check NewCompletionKind call at %s", loc))
	}
	return newSlot[T](CompletionKind, loc, completionEval[T]{pred: TerminalTag(tag)})
}

// NewCompletionPredicate creates a slot that checks the terminal state
// satisfies the given predicate
func NewCompletionPredicate[T any](loc Location, pred Predicate[r.Terminal]) *Slot[T] {
	return newSlot[T](CompletionPredicate, loc, completionEval[T]{pred: pred})
}

// NewSuccess creates a slot that checks the stream finishes without errors
func NewSuccess[T any](loc Location) *Slot[T] {
	return newSlot[T](SuccessOnly, loc, completionEval[T]{pred: TerminalTag(r.Finished)})
}

// NewFailure creates a slot that checks the stream fails
func NewFailure[T any](loc Location) *Slot[T] {
	return newSlot[T](FailureAny, loc, failureEval[T]{pred: AnyP[error]{}})
}

// NewFailureValue creates a slot that checks the stream fails with the given
// error (errors.Is semantics)
func NewFailureValue[T any](loc Location, expected error) *Slot[T] {
	return newSlot[T](FailureValue, loc, failureEval[T]{pred: ErrorIs(expected)})
}

// NewFailurePredicate creates a slot that checks the stream fails with an
// error that satisfies the given predicate
func NewFailurePredicate[T any](loc Location, pred Predicate[error]) *Slot[T] {
	return newSlot[T](FailurePredicate, loc, failureEval[T]{pred: pred})
}

// GetKind returns the Kind of this slot
func (s *Slot[T]) GetKind() Kind {
	return s.kind
}

// GetLocation returns where this slot was declared
func (s *Slot[T]) GetLocation() Location {
	return s.location
}

// OnResolve sets a callback that is executed (outside the slot lock) right
// after the slot resolves. It must be set before the slot is evaluated.
func (s *Slot[T]) OnResolve(cb func(Outcome)) {
	s.onResolve = cb
}

// Done returns a channel that gets closed when the slot resolves
func (s *Slot[T]) Done() <-chan struct{} {
	return s.doneCh
}

// transition moves the slot to a terminal resolution state. It must be called
// with the lock held.
func (s *Slot[T]) transition(status Status, err error) {
	if s.status != Unresolved {
		panic(r.NewProtocolViolation(
			"expectation resolved twice",
			r.Terminal{},
			fmt.Sprintf("slot %s at %s: %s -> %s", s.kind, s.location, s.status, status),
		))
	}
	s.status = status
	s.err = err
	close(s.doneCh)
}

// Evaluate checks the expectation against the given Snapshot. It returns true
// when this call resolved the slot; evaluating a resolved slot is a no-op.
//
// When the predicate of the slot panics, the slot resolves as Failed with a
// PredicatePanicError and the panic is raised again to the caller, which is
// whoever delivered the stream signal.
func (s *Slot[T]) Evaluate(snap r.Snapshot[T]) bool {
	outcome, resolved, panicVal := s.resolve(snap)
	if !resolved {
		return false
	}
	if s.onResolve != nil {
		s.onResolve(outcome)
	}
	if panicVal != nil {
		panic(panicVal)
	}
	return true
}

// resolve runs the evaluator with the slot lock held
func (s *Slot[T]) resolve(snap r.Snapshot[T]) (Outcome, bool, interface{}) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.status != Unresolved {
		return Outcome{}, false, nil
	}

	v, panicVal := s.safeEval(snap)
	if !v.decided {
		return Outcome{}, false, nil
	}

	s.consumed = v.consumed
	if v.err == nil {
		s.transition(Passed, nil)
	} else {
		s.transition(Failed, v.err)
	}
	return s.outcome(), true, panicVal
}

// safeEval turns a panic on the evaluator into a failed verdict
func (s *Slot[T]) safeEval(snap r.Snapshot[T]) (v verdict, panicVal interface{}) {
	defer func() {
		panicVal = recover()
		if panicVal != nil {
			v = verdict{
				decided:  true,
				err:      &PredicatePanicError{kind: s.kind, value: panicVal},
				consumed: s.eval.consumes(snap),
			}
		}
	}()
	return s.eval.eval(snap), nil
}

// Expire resolves the slot as TimedOut when it has not resolved yet. It
// returns true if the slot got expired by this call.
func (s *Slot[T]) Expire(after time.Duration) bool {
	outcome, expired := s.expire(after)
	if !expired {
		return false
	}
	if s.onResolve != nil {
		s.onResolve(outcome)
	}
	return true
}

func (s *Slot[T]) expire(after time.Duration) (Outcome, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.status != Unresolved {
		return Outcome{}, false
	}
	s.transition(TimedOut, &TimeoutError{after: after})
	return s.outcome(), true
}

// outcome must be called with the lock held
func (s *Slot[T]) outcome() Outcome {
	return Outcome{
		Kind:     s.kind,
		Status:   s.status,
		Err:      s.err,
		Location: s.location,
	}
}

// Outcome returns the current state of the slot
func (s *Slot[T]) Outcome() Outcome {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.outcome()
}

// Resolved indicates the slot left the Unresolved state
func (s *Slot[T]) Resolved() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.status != Unresolved
}

// Consumed returns how many values the verdict of this slot was based on;
// it is 0 for unresolved or timed out slots.
func (s *Slot[T]) Consumed() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.consumed
}

// MarkReported returns true the first time it is called, false afterwards
func (s *Slot[T]) MarkReported() bool {
	return s.reported.CompareAndSwap(false, true)
}
