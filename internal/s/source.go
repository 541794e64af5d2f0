package s

import (
	"context"
	"fmt"
)

// Observer receives the signals of a stream: zero or more values followed by
// exactly one completion. A nil error on Complete means the stream finished,
// a non-nil error means it failed.
type Observer[T any] interface {
	Next(value T)
	Complete(err error)
}

// Subscription is the handle returned by a Source; Cancel stops the delivery
// of signals to the subscribed Observer.
type Subscription interface {
	Cancel()
}

// Source is a push-based stream of values. Subscribe may deliver signals
// synchronously (before it returns) or from other goroutines.
type Source[T any] interface {
	Subscribe(obs Observer[T]) Subscription
}

// SourceFunc adapts a function into a Source
type SourceFunc[T any] func(Observer[T]) Subscription

// Subscribe calls the underlying function
func (fn SourceFunc[T]) Subscribe(obs Observer[T]) Subscription {
	return fn(obs)
}

// SubscriptionFunc adapts a function into a Subscription
type SubscriptionFunc func()

// Cancel calls the underlying function
func (fn SubscriptionFunc) Cancel() {
	fn()
}

// noopSubscription is returned by sources that are done by the time Subscribe
// returns
var noopSubscription = SubscriptionFunc(func() {})

// FromSlice returns a Source that synchronously emits the given values and
// then finishes
func FromSlice[T any](values ...T) Source[T] {
	values = append(values[:0:0], values...)
	return SourceFunc[T](func(obs Observer[T]) Subscription {
		for _, v := range values {
			obs.Next(v)
		}
		obs.Complete(nil)
		return noopSubscription
	})
}

// ProducerFn is the business logic of a Go source. It must emit values
// through the given function and return when the context is done. The
// returned error becomes the failure of the stream; nil finishes it.
type ProducerFn[T any] func(ctx context.Context, emit func(T)) error

// Go returns a Source that runs the given producer on its own goroutine every
// time it gets subscribed. Cancelling the subscription cancels the producer
// context; values emitted after that are dropped. A panic on the producer is
// captured and reported as a stream failure.
//
// ### WARNING:
//
// golang *does not* provide a hard kill mechanism for goroutines; a producer
// that ignores `ctx.Done()` keeps running after Cancel (e.g. memory leak).
func Go[T any](producer ProducerFn[T]) Source[T] {
	return SourceFunc[T](func(obs Observer[T]) Subscription {
		ctx, cancelFn := context.WithCancel(context.Background())

		go func() {
			// we cancel the ctx on regular termination
			defer cancelFn()
			err := runProducer(ctx, producer, obs)
			if ctx.Err() != nil {
				// subscription got cancelled, nobody is listening
				return
			}
			obs.Complete(err)
		}()

		return SubscriptionFunc(cancelFn)
	})
}

// runProducer executes the producer, transforming panics into errors
func runProducer[T any](ctx context.Context, producer ProducerFn[T], obs Observer[T]) (err error) {
	defer func() {
		panicVal := recover()
		// if there is a panicVal in the recover, we should handle this as an
		// error
		if panicVal == nil {
			return
		}
		panicErr, ok := panicVal.(error)
		if !ok {
			panicErr = fmt.Errorf("panic error: %v", panicVal)
		}
		err = panicErr
	}()

	emit := func(v T) {
		if ctx.Err() != nil {
			return
		}
		obs.Next(v)
	}

	return producer(ctx, emit)
}

// FromChannel returns a Source that emits every value received on the values
// channel. Once values is closed, the stream terminates with the first
// element received from errs (nil finishes the stream). A nil errs channel
// finishes the stream as soon as values is closed; otherwise errs must either
// get a value or be closed.
func FromChannel[T any](values <-chan T, errs <-chan error) Source[T] {
	return Go(func(ctx context.Context, emit func(T)) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case v, ok := <-values:
				if !ok {
					return waitChannelErr(ctx, errs)
				}
				emit(v)
			}
		}
	})
}

func waitChannelErr(ctx context.Context, errs <-chan error) error {
	if errs == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errs:
		return err
	}
}
