package expect

import (
	"github.com/capatazlib/go-streamexpect/internal/s"
)

// Observer receives the signals of a stream: zero or more calls to Next
// followed by exactly one call to Complete. A nil error on Complete means the
// stream finished, a non-nil error means it failed.
//
// Since: 0.1.0
type Observer[T any] = s.Observer[T]

// Subscription is the cancellable handle a Source returns on Subscribe
//
// Since: 0.1.0
type Subscription = s.Subscription

// Source is a push-based stream of values. Implementations may deliver
// signals synchronously (inside Subscribe) or from any goroutine.
//
// Since: 0.1.0
type Source[T any] = s.Source[T]

// SourceFunc adapts a function into a Source
//
// Since: 0.1.0
type SourceFunc[T any] = s.SourceFunc[T]

// SubscriptionFunc adapts a function into a Subscription
//
// Since: 0.1.0
type SubscriptionFunc = s.SubscriptionFunc

// ProducerFn is the function executed by a Go source; it emits values through
// the given emit function and returns when it is done or when the context is
// cancelled.
//
// Since: 0.1.0
type ProducerFn[T any] = s.ProducerFn[T]

// FromSlice returns a Source that emits the given values synchronously on
// Subscribe and then finishes
//
// Since: 0.1.0
func FromSlice[T any](values ...T) Source[T] {
	return s.FromSlice(values...)
}

// FromChannel returns a Source that emits every value received on the values
// channel; once values gets closed the stream terminates with the first
// element of errs, a nil errs channel finishes the stream right away.
//
// Since: 0.1.0
func FromChannel[T any](values <-chan T, errs <-chan error) Source[T] {
	return s.FromChannel(values, errs)
}

// Go returns a Source that runs the given producer on a new goroutine every
// time it gets subscribed. The error returned by the producer becomes the
// failure of the stream, and so does a panic. Cancelling the subscription
// cancels the context given to the producer.
//
// Since: 0.1.0
func Go[T any](producer ProducerFn[T]) Source[T] {
	return s.Go(producer)
}
