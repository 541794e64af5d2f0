package expect

import (
	"github.com/capatazlib/go-streamexpect/internal/r"
	"github.com/capatazlib/go-streamexpect/internal/x"
)

// ErrKVs is an utility interface used to get key-values out of expectation
// errors
//
// Since: 0.1.0
type ErrKVs = x.ErrKVs

// MismatchError is reported when the values of a stream did not satisfy an
// expectation. When the expectation used a function or a gomega matcher,
// errors.Unwrap returns the error they reported.
//
// Since: 0.1.0
type MismatchError = x.MismatchError

// PrematureTerminationError is reported when a stream terminated before
// emitting the values an expectation needed
//
// Since: 0.1.0
type PrematureTerminationError = x.PrematureTerminationError

// WrongCompletionError is reported when a stream terminated in a different
// way than the one expected (e.g. failed when it should have finished)
//
// Since: 0.1.0
type WrongCompletionError = x.WrongCompletionError

// TimeoutError is reported when an expectation did not resolve before the
// wait deadline
//
// Since: 0.1.0
type TimeoutError = x.TimeoutError

// PredicatePanicError is reported when the function or matcher given to an
// expectation panicked. The panic is raised again on the goroutine that
// delivered the signal; a Go source turns it into the failure of the stream.
//
// Since: 0.1.0
type PredicatePanicError = x.PredicatePanicError

// ProtocolViolationError is the panic value used when a Source breaks the
// stream contract (e.g. it terminates twice, or it emits after terminating)
//
// Since: 0.1.0
type ProtocolViolationError = r.ProtocolViolationError
