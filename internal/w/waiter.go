// Package w contains the waiter, the only blocking operation of an
// expectation chain.
package w

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/capatazlib/go-streamexpect/internal/m"
	"github.com/capatazlib/go-streamexpect/internal/x"
)

// Timer is the clock used to compute the deadline of a wait
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

type realTimer struct{}

func (realTimer) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// RealTimer returns a Timer backed by the time package
func RealTimer() Timer {
	return realTimer{}
}

// Reporter receives the outcome of every slot, exactly once per slot
type Reporter interface {
	Report(x.Outcome)
}

// WaitSpec contains the collaborators of a wait
type WaitSpec struct {
	Timer   Timer
	Logger  logrus.FieldLogger
	Metrics *m.Metrics
	// Release is called once the wait is over, it usually cancels the
	// subscription of the chain that produced the slots
	Release func()
}

func (spec WaitSpec) normalize() WaitSpec {
	if spec.Timer == nil {
		spec.Timer = RealTimer()
	}
	if spec.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		spec.Logger = logger
	}
	if spec.Release == nil {
		spec.Release = func() {}
	}
	return spec
}

// WaitAll blocks until every given slot resolves, the timeout elapses or the
// context is done, whichever comes first. Slots that are still unresolved at
// that point are expired as timed out. Every outcome that has not been
// reported before is then handed to the reporter and the spec Release
// function is called.
//
// The returned outcomes follow the order of the given slots, and include
// slots that were reported by a previous wait.
func WaitAll(
	ctx context.Context,
	spec WaitSpec,
	reporter Reporter,
	slots []x.Resolvable,
	timeout time.Duration,
) []x.Outcome {
	spec = spec.normalize()
	startTime := time.Now()

	deadline := spec.Timer.After(timeout)
	expired := false
	expireAfter := timeout

waitLoop:
	for _, slot := range slots {
		select {
		case <-slot.Done():
		case <-deadline:
			expired = true
			break waitLoop
		case <-ctx.Done():
			expired = true
			expireAfter = time.Since(startTime)
			break waitLoop
		}
	}

	elapsed := time.Since(startTime)
	spec.Metrics.WaitFinished(elapsed)

	if expired {
		for _, slot := range slots {
			slot.Expire(expireAfter)
		}
	}

	outcomes := make([]x.Outcome, 0, len(slots))
	failed := 0
	for _, slot := range slots {
		outcome := slot.Outcome()
		if !outcome.Passed() {
			failed++
		}
		if slot.MarkReported() {
			reporter.Report(outcome)
		}
		outcomes = append(outcomes, outcome)
	}

	spec.Release()

	spec.Logger.WithFields(logrus.Fields{
		"wait.slots":   len(slots),
		"wait.failed":  failed,
		"wait.expired": expired,
		"wait.elapsed": elapsed,
	}).Debug("wait finished")

	return outcomes
}
