package stest

import (
	"context"
	"sync"

	"github.com/capatazlib/go-streamexpect/expect"
)

////////////////////////////////////////////////////////////////////////////////

// RecordingReporter is an expect.Reporter that keeps every outcome it
// receives; it allows to block a goroutine until a particular outcome gets
// reported.
type RecordingReporter struct {
	bufferCond *sync.Cond
	buffer     []expect.Outcome
}

// NewRecordingReporter returns an empty RecordingReporter
func NewRecordingReporter() *RecordingReporter {
	var bufferMux sync.Mutex
	return &RecordingReporter{
		bufferCond: sync.NewCond(&bufferMux),
		buffer:     make([]expect.Outcome, 0, 16),
	}
}

// Report stores the outcome and wakes up waiting goroutines
func (rr *RecordingReporter) Report(o expect.Outcome) {
	rr.bufferCond.L.Lock()
	defer rr.bufferCond.L.Unlock()
	rr.buffer = append(rr.buffer, o)
	rr.bufferCond.Broadcast()
}

// Snapshot returns all the outcomes this reporter has received
func (rr *RecordingReporter) Snapshot() []expect.Outcome {
	rr.bufferCond.L.Lock()
	defer rr.bufferCond.L.Unlock()
	return append(rr.buffer[:0:0], rr.buffer...)
}

// Failures returns the outcomes that did not pass
func (rr *RecordingReporter) Failures() []expect.Outcome {
	rr.bufferCond.L.Lock()
	defer rr.bufferCond.L.Unlock()
	var acc []expect.Outcome
	for _, o := range rr.buffer {
		if !o.Passed() {
			acc = append(acc, o)
		}
	}
	return acc
}

// WaitTill blocks until an outcome that satisfies the given predicate gets
// reported, or until the context is done
func (rr *RecordingReporter) WaitTill(ctx context.Context, pred OutcomeP) error {
	// wake up the waiting loop when the context is done
	stop := context.AfterFunc(ctx, func() {
		rr.bufferCond.L.Lock()
		defer rr.bufferCond.L.Unlock()
		rr.bufferCond.Broadcast()
	})
	defer stop()

	rr.bufferCond.L.Lock()
	defer rr.bufferCond.L.Unlock()

	ix := 0
	for {
		for ; ix < len(rr.buffer); ix++ {
			if pred.Call(rr.buffer[ix]) {
				return nil
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rr.bufferCond.Wait()
	}
}
