package expect

import (
	"context"
	"time"

	"github.com/onsi/gomega/types"
	"github.com/sirupsen/logrus"

	"github.com/capatazlib/go-streamexpect/internal/m"
	"github.com/capatazlib/go-streamexpect/internal/s"
	"github.com/capatazlib/go-streamexpect/internal/w"
	"github.com/capatazlib/go-streamexpect/internal/x"
)

// Chain is a builder of expectations over a single stream. Every declaration
// method registers an expectation and returns the same Chain, so calls can be
// chained. The stream gets subscribed (once) when the first expectation is
// declared.
//
// Since: 0.1.0
type Chain[T any] struct {
	chain    *s.Chain[T]
	reporter Reporter
	cfg      settings
	metrics  *m.Metrics
}

// On creates a Chain of expectations over the given source. Outcomes are
// handed to the given reporter when a wait is over; use T to report into a
// *testing.T.
//
// Since: 0.1.0
func On[T any](reporter Reporter, source Source[T], opts ...Opt) *Chain[T] {
	cfg := defaultSettings()
	for _, optFn := range opts {
		optFn(&cfg)
	}

	if reporter == nil {
		reporter = ReporterFunc(func(Outcome) {})
	}

	var metrics *m.Metrics
	if cfg.registerer != nil {
		metrics = m.New(cfg.registerer)
	}

	return &Chain[T]{
		chain: s.NewChain(
			s.ChainSpec{
				Name:    cfg.name,
				Logger:  cfg.logger,
				Metrics: metrics,
				Ordered: cfg.ordered,
			},
			source,
		),
		reporter: reporter,
		cfg:      cfg,
		metrics:  metrics,
	}
}

func (ch *Chain[T]) attach(slot *x.Slot[T]) *Chain[T] {
	ch.chain.Attach(slot)
	return ch
}

// Value expects the first value of the stream to be equal to the given one.
// Equality is checked with go-cmp, unexported fields included.
//
// Since: 0.1.0
func (ch *Chain[T]) Value(expected T) *Chain[T] {
	return ch.attach(x.NewValue(x.CaptureLocation(1), expected))
}

// ValueFunc expects the first value of the stream to satisfy the given
// function; a non-nil error fails the expectation.
//
// Since: 0.1.0
func (ch *Chain[T]) ValueFunc(fn func(T) error) *Chain[T] {
	return ch.attach(x.NewValuePredicate(x.CaptureLocation(1), x.Func(fn)))
}

// ValueMatching expects the first value of the stream to satisfy the given
// gomega matcher
//
// Since: 0.1.0
func (ch *Chain[T]) ValueMatching(matcher types.GomegaMatcher) *Chain[T] {
	return ch.attach(x.NewValuePredicate(x.CaptureLocation(1), x.Matcher[T](matcher)))
}

// Values expects the first len(expected) values of the stream to be equal to
// the given ones. The expectation does not resolve before that many values
// are observed.
//
// Since: 0.1.0
func (ch *Chain[T]) Values(expected ...T) *Chain[T] {
	return ch.attach(x.NewCollected(x.CaptureLocation(1), expected))
}

// ValuesFunc expects the first n values of the stream to satisfy the given
// function. It panics if n is negative.
//
// Since: 0.1.0
func (ch *Chain[T]) ValuesFunc(n int, fn func([]T) error) *Chain[T] {
	return ch.attach(x.NewCollectedPredicate(x.CaptureLocation(1), n, x.Func(fn)))
}

// Completion expects the stream to terminate, either finishing or failing
//
// Since: 0.1.0
func (ch *Chain[T]) Completion() *Chain[T] {
	return ch.attach(x.NewCompletion[T](x.CaptureLocation(1)))
}

// CompletionKind expects the stream to terminate with the given tag
// (Finished or Errored)
//
// Since: 0.1.0
func (ch *Chain[T]) CompletionKind(tag TerminalTag) *Chain[T] {
	return ch.attach(x.NewCompletionKind[T](x.CaptureLocation(1), tag))
}

// CompletionFunc expects the terminal state of the stream to satisfy the
// given function
//
// Since: 0.1.0
func (ch *Chain[T]) CompletionFunc(fn func(Terminal) error) *Chain[T] {
	return ch.attach(x.NewCompletionPredicate[T](x.CaptureLocation(1), x.Func(fn)))
}

// Success expects the stream to finish without errors
//
// Since: 0.1.0
func (ch *Chain[T]) Success() *Chain[T] {
	return ch.attach(x.NewSuccess[T](x.CaptureLocation(1)))
}

// Failure expects the stream to fail with any error
//
// Since: 0.1.0
func (ch *Chain[T]) Failure() *Chain[T] {
	return ch.attach(x.NewFailure[T](x.CaptureLocation(1)))
}

// FailureValue expects the stream to fail with the given error; wrapped
// errors match (errors.Is semantics)
//
// Since: 0.1.0
func (ch *Chain[T]) FailureValue(expected error) *Chain[T] {
	return ch.attach(x.NewFailureValue[T](x.CaptureLocation(1), expected))
}

// FailureFunc expects the stream to fail with an error that satisfies the
// given function
//
// Since: 0.1.0
func (ch *Chain[T]) FailureFunc(fn func(error) error) *Chain[T] {
	return ch.attach(x.NewFailurePredicate[T](x.CaptureLocation(1), x.Func(fn)))
}

// WaitForExpectations blocks until every declared expectation resolved or the
// timeout elapsed. Expectations without a verdict by then are reported as
// timed out. Every outcome is handed to the chain reporter (only once, even
// if this method gets called again) and the subscription to the stream gets
// cancelled.
//
// The returned outcomes follow the declaration order.
//
// Since: 0.1.0
func (ch *Chain[T]) WaitForExpectations(timeout time.Duration) []Outcome {
	return ch.WaitForExpectationsContext(context.Background(), timeout)
}

// WaitForExpectationsContext is like WaitForExpectations, but it also
// returns when the given context is done; unresolved expectations are
// reported as timed out in that case.
//
// Since: 0.1.0
func (ch *Chain[T]) WaitForExpectationsContext(ctx context.Context, timeout time.Duration) []Outcome {
	logger := ch.cfg.logger.WithFields(logrus.Fields{
		"chain":    ch.cfg.name,
		"chain.id": ch.chain.GetID(),
	})
	return w.WaitAll(
		ctx,
		w.WaitSpec{
			Timer:   ch.cfg.timer,
			Logger:  logger,
			Metrics: ch.metrics,
			Release: ch.chain.Cancel,
		},
		ch.reporter,
		ch.chain.Slots(),
		timeout,
	)
}

// Cancel releases the subscription to the stream without waiting; signals
// delivered afterwards are ignored. It is safe to call Cancel many times.
//
// Since: 0.1.0
func (ch *Chain[T]) Cancel() {
	ch.chain.Cancel()
}
