package expect

import (
	"github.com/capatazlib/go-streamexpect/internal/w"
)

// Reporter receives the outcome of every expectation of a chain, exactly once
// per expectation, when a wait is over
//
// Since: 0.1.0
type Reporter = w.Reporter

// ReporterFunc adapts a function into a Reporter
//
// Since: 0.1.0
type ReporterFunc func(Outcome)

// Report calls the underlying function
func (fn ReporterFunc) Report(o Outcome) {
	fn(o)
}

// TB is the subset of testing.TB used by T
//
// Since: 0.1.0
type TB interface {
	Helper()
	Errorf(format string, args ...interface{})
}

type tbReporter struct {
	tb TB
}

func (rep tbReporter) Report(o Outcome) {
	rep.tb.Helper()
	if o.Passed() {
		return
	}
	rep.tb.Errorf("%s: %s expectation %s: %s", o.Location, o.Kind, o.Status, o.Message())
}

// T returns a Reporter that marks the given test as failed for every
// expectation that did not pass; passing expectations are not reported.
//
// Since: 0.1.0
func T(tb TB) Reporter {
	return tbReporter{tb: tb}
}
