/*
Package expect offers an API to assert, asynchronously, what a push-based
stream of values does: which values it emits, and how it terminates.

A stream is anything that implements the Source interface: a subscription
that delivers zero or more values followed by exactly one completion signal
(finished, or failed with an error). Expectations are declared on a Chain,
which subscribes to the source once and records every signal on a single
event log; every expectation checks that same log independently.

	chain := expect.On[string](expect.T(t), source).
		Value("cool").
		Values("cool", "neat").
		Success()

	chain.WaitForExpectations(1 * time.Second)

Expectation kinds

Value checks

* Value -- the first value equals the given one (go-cmp equality)

* ValueFunc -- the first value satisfies a function returning an error

* ValueMatching -- the first value satisfies a gomega matcher

* Values / ValuesFunc -- the first N values, checked as a group; they never
resolve before N values are observed

Completion checks

* Completion -- the stream terminates, in any way

* CompletionKind -- the stream terminates as Finished or Errored

* CompletionFunc -- the terminal state satisfies a function

* Success -- the stream finishes without errors

* Failure / FailureValue / FailureFunc -- the stream fails (with a given
error, using errors.Is semantics, or with an error that satisfies a function)

Each expectation resolves at most once. A stream that terminates before an
expectation gets the values it needs resolves it as failed with a
PrematureTerminationError, distinct from a MismatchError (wrong values) and
from a TimeoutError (nothing happened before the deadline).

Waiting

WaitForExpectations is the only blocking call. It returns as soon as every
expectation resolved or the timeout elapsed; then it reports every outcome to
the Reporter given to On (exactly once per expectation) and cancels the
subscription.

Ordering

By default expectations are not ordered against each other: every value
expectation looks at the start of the stream. Use WithOrderedExpectations to
make each expectation look only at the values the previous expectations did
not consume.
*/
package expect
