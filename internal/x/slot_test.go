package x_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/capatazlib/go-streamexpect/internal/r"
	"github.com/capatazlib/go-streamexpect/internal/x"
)

var (
	errSomeProblem  = errors.New("some problem")
	errOtherProblem = errors.New("other problem")
)

// snap builds a Snapshot; a nil terminal error with finished == false means
// the stream is still pending
func pending(values ...string) r.Snapshot[string] {
	return r.NewSnapshot(values, r.Terminal{})
}

func finished(values ...string) r.Snapshot[string] {
	return r.NewSnapshot(values, r.FinishedTerminal())
}

func failed(err error, values ...string) r.Snapshot[string] {
	return r.NewSnapshot(values, r.FailedTerminal(err))
}

func here() x.Location {
	return x.CaptureLocation(1)
}

func requireStatus(t *testing.T, slot *x.Slot[string], status x.Status) x.Outcome {
	t.Helper()
	outcome := slot.Outcome()
	require.Equal(t, status, outcome.Status, "outcome: %s", outcome)
	return outcome
}

func TestSlotKinds(t *testing.T) {
	checkCool := func(v string) error {
		if v != "cool" {
			return fmt.Errorf("want cool, got %q", v)
		}
		return nil
	}
	checkSecondIsNeat := func(vs []string) error {
		if vs[1] != "neat" {
			return fmt.Errorf("want neat, got %q", vs[1])
		}
		return nil
	}
	checkSomeProblem := func(err error) error {
		if !errors.Is(err, errSomeProblem) {
			return fmt.Errorf("want some problem, got %v", err)
		}
		return nil
	}
	checkFinished := func(term r.Terminal) error {
		if term.GetTag() != r.Finished {
			return fmt.Errorf("want Finished, got %s", term)
		}
		return nil
	}

	type testCase struct {
		name    string
		slot    func() *x.Slot[string]
		snaps   []r.Snapshot[string]
		status  x.Status
		errType interface{}
	}

	var (
		mismatch  *x.MismatchError
		premature *x.PrematureTerminationError
		wrongKind *x.WrongCompletionError
	)

	cases := []testCase{
		{
			name:   "value passes on first value",
			slot:   func() *x.Slot[string] { return x.NewValue(here(), "cool") },
			snaps:  []r.Snapshot[string]{pending("cool")},
			status: x.Passed,
		},
		{
			name:    "value mismatch",
			slot:    func() *x.Slot[string] { return x.NewValue(here(), "neat") },
			snaps:   []r.Snapshot[string]{pending("cool")},
			status:  x.Failed,
			errType: &mismatch,
		},
		{
			name:    "value on empty stream",
			slot:    func() *x.Slot[string] { return x.NewValue(here(), "neat") },
			snaps:   []r.Snapshot[string]{pending(), finished()},
			status:  x.Failed,
			errType: &premature,
		},
		{
			name:   "value predicate passes",
			slot:   func() *x.Slot[string] { return x.NewValuePredicate(here(), x.Func(checkCool)) },
			snaps:  []r.Snapshot[string]{pending("cool")},
			status: x.Passed,
		},
		{
			name:    "value predicate fails",
			slot:    func() *x.Slot[string] { return x.NewValuePredicate(here(), x.Func(checkCool)) },
			snaps:   []r.Snapshot[string]{pending("neat")},
			status:  x.Failed,
			errType: &mismatch,
		},
		{
			name:    "value predicate on failed empty stream",
			slot:    func() *x.Slot[string] { return x.NewValuePredicate(here(), x.Func(checkCool)) },
			snaps:   []r.Snapshot[string]{failed(errSomeProblem)},
			status:  x.Failed,
			errType: &premature,
		},
		{
			name: "collected passes once arity is reached",
			slot: func() *x.Slot[string] {
				return x.NewCollected(here(), []string{"cool", "neat", "awesome"})
			},
			snaps: []r.Snapshot[string]{
				pending("cool"),
				pending("cool", "neat"),
				pending("cool", "neat", "awesome"),
			},
			status: x.Passed,
		},
		{
			name: "collected mismatch",
			slot: func() *x.Slot[string] {
				return x.NewCollected(here(), []string{"cool", "neat", "not awesome"})
			},
			snaps:   []r.Snapshot[string]{finished("cool", "neat", "awesome")},
			status:  x.Failed,
			errType: &mismatch,
		},
		{
			name: "collected on short stream",
			slot: func() *x.Slot[string] {
				return x.NewCollected(here(), []string{"cool", "neat", "awesome"})
			},
			snaps:   []r.Snapshot[string]{finished()},
			status:  x.Failed,
			errType: &premature,
		},
		{
			name: "collected predicate passes",
			slot: func() *x.Slot[string] {
				return x.NewCollectedPredicate(here(), 3, x.Func(checkSecondIsNeat))
			},
			snaps:  []r.Snapshot[string]{finished("cool", "neat", "awesome")},
			status: x.Passed,
		},
		{
			name: "collected predicate fails",
			slot: func() *x.Slot[string] {
				return x.NewCollectedPredicate(here(), 3, x.Func(checkSecondIsNeat))
			},
			snaps:   []r.Snapshot[string]{finished("neat", "cool", "awesome")},
			status:  x.Failed,
			errType: &mismatch,
		},
		{
			name:   "completion on finished",
			slot:   func() *x.Slot[string] { return x.NewCompletion[string](here()) },
			snaps:  []r.Snapshot[string]{finished()},
			status: x.Passed,
		},
		{
			name:   "completion on failure",
			slot:   func() *x.Slot[string] { return x.NewCompletion[string](here()) },
			snaps:  []r.Snapshot[string]{failed(errSomeProblem)},
			status: x.Passed,
		},
		{
			name:   "completion kind finished",
			slot:   func() *x.Slot[string] { return x.NewCompletionKind[string](here(), r.Finished) },
			snaps:  []r.Snapshot[string]{finished("cool")},
			status: x.Passed,
		},
		{
			name:    "completion kind finished on failure",
			slot:    func() *x.Slot[string] { return x.NewCompletionKind[string](here(), r.Finished) },
			snaps:   []r.Snapshot[string]{failed(errSomeProblem)},
			status:  x.Failed,
			errType: &wrongKind,
		},
		{
			name:   "completion kind failed ignores payload",
			slot:   func() *x.Slot[string] { return x.NewCompletionKind[string](here(), r.Failed) },
			snaps:  []r.Snapshot[string]{failed(errOtherProblem)},
			status: x.Passed,
		},
		{
			name: "completion predicate passes",
			slot: func() *x.Slot[string] {
				return x.NewCompletionPredicate[string](here(), x.Func(checkFinished))
			},
			snaps:  []r.Snapshot[string]{finished()},
			status: x.Passed,
		},
		{
			name: "completion predicate fails",
			slot: func() *x.Slot[string] {
				return x.NewCompletionPredicate[string](here(), x.Func(checkFinished))
			},
			snaps:   []r.Snapshot[string]{failed(errSomeProblem)},
			status:  x.Failed,
			errType: &mismatch,
		},
		{
			name:   "success",
			slot:   func() *x.Slot[string] { return x.NewSuccess[string](here()) },
			snaps:  []r.Snapshot[string]{finished()},
			status: x.Passed,
		},
		{
			name:    "success on failure",
			slot:    func() *x.Slot[string] { return x.NewSuccess[string](here()) },
			snaps:   []r.Snapshot[string]{failed(errSomeProblem)},
			status:  x.Failed,
			errType: &wrongKind,
		},
		{
			name:   "failure",
			slot:   func() *x.Slot[string] { return x.NewFailure[string](here()) },
			snaps:  []r.Snapshot[string]{failed(errSomeProblem)},
			status: x.Passed,
		},
		{
			name:    "failure on finished",
			slot:    func() *x.Slot[string] { return x.NewFailure[string](here()) },
			snaps:   []r.Snapshot[string]{finished()},
			status:  x.Failed,
			errType: &wrongKind,
		},
		{
			name:   "failure value",
			slot:   func() *x.Slot[string] { return x.NewFailureValue[string](here(), errSomeProblem) },
			snaps:  []r.Snapshot[string]{failed(fmt.Errorf("wrapped: %w", errSomeProblem))},
			status: x.Passed,
		},
		{
			name:    "failure value mismatch",
			slot:    func() *x.Slot[string] { return x.NewFailureValue[string](here(), errSomeProblem) },
			snaps:   []r.Snapshot[string]{failed(errOtherProblem)},
			status:  x.Failed,
			errType: &mismatch,
		},
		{
			name:    "failure value on finished",
			slot:    func() *x.Slot[string] { return x.NewFailureValue[string](here(), errSomeProblem) },
			snaps:   []r.Snapshot[string]{finished()},
			status:  x.Failed,
			errType: &wrongKind,
		},
		{
			name: "failure predicate",
			slot: func() *x.Slot[string] {
				return x.NewFailurePredicate[string](here(), x.Func(checkSomeProblem))
			},
			snaps:  []r.Snapshot[string]{failed(errSomeProblem)},
			status: x.Passed,
		},
		{
			name: "failure predicate mismatch",
			slot: func() *x.Slot[string] {
				return x.NewFailurePredicate[string](here(), x.Func(checkSomeProblem))
			},
			snaps:   []r.Snapshot[string]{failed(errOtherProblem)},
			status:  x.Failed,
			errType: &mismatch,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slot := tc.slot()
			for _, snap := range tc.snaps {
				slot.Evaluate(snap)
			}
			outcome := requireStatus(t, slot, tc.status)
			if tc.errType == nil {
				assert.NoError(t, outcome.Err)
				assert.Empty(t, outcome.Message())
				return
			}
			assert.ErrorAs(t, outcome.Err, tc.errType)
			assert.NotEmpty(t, outcome.Message())
		})
	}
}

func TestCompletionSlotsNeverResolveOnPending(t *testing.T) {
	slots := []*x.Slot[string]{
		x.NewCompletion[string](here()),
		x.NewCompletionKind[string](here(), r.Finished),
		x.NewSuccess[string](here()),
		x.NewFailure[string](here()),
		x.NewFailureValue[string](here(), errSomeProblem),
	}
	for _, slot := range slots {
		assert.False(t, slot.Evaluate(pending("cool", "neat")))
		assert.False(t, slot.Resolved())
		select {
		case <-slot.Done():
			t.Fatalf("slot %s resolved on a pending stream", slot.GetKind())
		default:
		}
	}
}

func TestSlotDoesNotResolveBeforeArity(t *testing.T) {
	slot := x.NewCollected(here(), []string{"cool", "neat"})
	assert.False(t, slot.Evaluate(pending("cool")))
	assert.False(t, slot.Resolved())
	assert.True(t, slot.Evaluate(pending("cool", "neat")))
	requireStatus(t, slot, x.Passed)
	assert.Equal(t, 2, slot.Consumed())
}

func TestSlotResolutionIsPermanent(t *testing.T) {
	var resolutions int
	slot := x.NewValue(here(), "cool")
	slot.OnResolve(func(x.Outcome) { resolutions++ })

	assert.True(t, slot.Evaluate(pending("neat")))
	first := requireStatus(t, slot, x.Failed)

	// later changes on the log must not flip the verdict
	assert.False(t, slot.Evaluate(pending("cool")))
	assert.False(t, slot.Evaluate(finished("cool")))
	assert.False(t, slot.Expire(time.Second))

	second := slot.Outcome()
	assert.Equal(t, first, second)
	assert.Equal(t, 1, resolutions)
}

func TestSlotExpire(t *testing.T) {
	slot := x.NewCompletion[string](here())
	assert.True(t, slot.Expire(time.Second))

	outcome := requireStatus(t, slot, x.TimedOut)
	var timeoutErr *x.TimeoutError
	require.ErrorAs(t, outcome.Err, &timeoutErr)
	assert.Equal(t, time.Second, timeoutErr.After())

	// a resolution after the timeout is a no-op, not a crash
	assert.False(t, slot.Evaluate(finished()))
	requireStatus(t, slot, x.TimedOut)

	select {
	case <-slot.Done():
	default:
		t.Fatal("expected Done channel to be closed")
	}
}

func TestSlotMarkReported(t *testing.T) {
	slot := x.NewSuccess[string](here())
	assert.True(t, slot.MarkReported())
	assert.False(t, slot.MarkReported())
}

func TestSlotLocation(t *testing.T) {
	slot := x.NewValue(here(), "cool")
	loc := slot.GetLocation()
	assert.Contains(t, loc.String(), "slot_test.go:")
	assert.Contains(t, loc.Function, "TestSlotLocation")
}

func TestValueMatchingGomegaMatcher(t *testing.T) {
	slot := x.NewValuePredicate(here(), x.Matcher[string](HavePrefix("co")))
	slot.Evaluate(pending("cool"))
	requireStatus(t, slot, x.Passed)

	slot = x.NewValuePredicate(here(), x.Matcher[string](HavePrefix("ne")))
	slot.Evaluate(pending("cool"))
	outcome := requireStatus(t, slot, x.Failed)
	assert.Contains(t, outcome.Message(), "to have prefix")
}

func TestMismatchMessageContainsDiff(t *testing.T) {
	slot := x.NewCollected(here(), []string{"cool", "neat", "not awesome"})
	slot.Evaluate(finished("cool", "neat", "awesome"))

	outcome := requireStatus(t, slot, x.Failed)
	var mismatch *x.MismatchError
	require.ErrorAs(t, outcome.Err, &mismatch)
	assert.Equal(t, []string{"cool", "neat", "not awesome"}, mismatch.Expected())
	assert.Equal(t, []string{"cool", "neat", "awesome"}, mismatch.Actual())
	assert.Contains(t, outcome.Message(), "diff (-expected +actual)")
	assert.Equal(t, "AssertionMismatch", mismatch.KVs()["failure.type"])
}

func TestPredicateClosureCannotMutateLog(t *testing.T) {
	rec := r.NewRecorder[string](nil)
	rec.Record("cool")
	rec.Record("neat")

	slot := x.NewCollectedPredicate(here(), 2, x.Func(func(vs []string) error {
		vs[0] = "mutated"
		return nil
	}))
	slot.Evaluate(rec.Snapshot())
	requireStatus(t, slot, x.Passed)
	assert.Equal(t, []string{"cool", "neat"}, rec.Snapshot().Values())
}

func TestPanickingPredicateFailsSlot(t *testing.T) {
	var resolved []x.Outcome
	slot := x.NewValuePredicate(here(), x.Func(func(string) error {
		panic("boom")
	}))
	slot.OnResolve(func(o x.Outcome) { resolved = append(resolved, o) })

	assert.PanicsWithValue(t, "boom", func() { slot.Evaluate(pending("cool")) })

	outcome := requireStatus(t, slot, x.Failed)
	var panicErr *x.PredicatePanicError
	require.ErrorAs(t, outcome.Err, &panicErr)
	assert.Equal(t, "boom", panicErr.Value())
	assert.Equal(t, "SingleValuePredicate predicate panicked: boom", outcome.Message())
	assert.Equal(t, "PredicatePanic", panicErr.KVs()["failure.type"])
	require.Len(t, resolved, 1)
	assert.Equal(t, x.Failed, resolved[0].Status)
	assert.Equal(t, 1, slot.Consumed())

	// the slot lock got released, later calls do not block
	assert.False(t, slot.Evaluate(pending("cool", "neat")))
	assert.False(t, slot.Expire(time.Second))
	requireStatus(t, slot, x.Failed)
}

func TestPanickingPredicateWithError(t *testing.T) {
	slot := x.NewFailurePredicate[string](here(), x.Func(func(error) error {
		panic(errOtherProblem)
	}))

	assert.Panics(t, func() { slot.Evaluate(failed(errSomeProblem, "cool")) })

	outcome := requireStatus(t, slot, x.Failed)
	assert.ErrorIs(t, outcome.Err, errOtherProblem)
	assert.Equal(t, 1, slot.Consumed())
}

func TestPanickingCollectedPredicateConsumesArity(t *testing.T) {
	slot := x.NewCollectedPredicate(here(), 2, x.Func(func([]string) error {
		panic("boom")
	}))

	assert.Panics(t, func() { slot.Evaluate(pending("cool", "neat", "awesome")) })
	requireStatus(t, slot, x.Failed)
	assert.Equal(t, 2, slot.Consumed())
}

func TestInvalidSlotDeclarationsPanic(t *testing.T) {
	assert.Panics(t, func() { x.NewCollectedPredicate(here(), -1, x.AnyP[[]string]{}) })
	assert.Panics(t, func() { x.NewCompletionKind[string](here(), r.Pending) })
}

func TestSingleValueProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOf(rapid.StringN(0, 4, -1)).Draw(rt, "values")
		expected := rapid.StringN(0, 4, -1).Draw(rt, "expected")

		rec := r.NewRecorder[string](nil)
		slot := x.NewValue(x.Location{}, expected)
		for _, v := range values {
			rec.Record(v)
			slot.Evaluate(rec.Snapshot())
		}
		rec.RecordTerminal(r.FinishedTerminal())
		slot.Evaluate(rec.Snapshot())

		outcome := slot.Outcome()
		switch {
		case len(values) == 0:
			var premature *x.PrematureTerminationError
			if outcome.Status != x.Failed || !errors.As(outcome.Err, &premature) {
				rt.Fatalf("expected premature termination, got %s", outcome)
			}
		case values[0] == expected:
			if outcome.Status != x.Passed {
				rt.Fatalf("expected pass, got %s", outcome)
			}
		default:
			var mismatch *x.MismatchError
			if outcome.Status != x.Failed || !errors.As(outcome.Err, &mismatch) {
				rt.Fatalf("expected mismatch, got %s", outcome)
			}
		}
	})
}

func TestCollectedProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOf(rapid.IntRange(0, 3)).Draw(rt, "values")
		arity := rapid.IntRange(0, len(values)+2).Draw(rt, "arity")

		var expected []int
		if arity <= len(values) {
			expected = append(expected, values[:arity]...)
		} else {
			expected = make([]int, arity)
		}

		rec := r.NewRecorder[int](nil)
		slot := x.NewCollected(x.Location{}, expected)
		slot.Evaluate(rec.Snapshot())
		for _, v := range values {
			rec.Record(v)
			slot.Evaluate(rec.Snapshot())
		}
		rec.RecordTerminal(r.FinishedTerminal())
		slot.Evaluate(rec.Snapshot())

		outcome := slot.Outcome()
		if arity <= len(values) {
			if outcome.Status != x.Passed {
				rt.Fatalf("expected pass, got %s", outcome)
			}
			return
		}
		var premature *x.PrematureTerminationError
		if outcome.Status != x.Failed || !errors.As(outcome.Err, &premature) {
			rt.Fatalf("expected premature termination, got %s", outcome)
		}
	})
}

func TestCompletionKindRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOf(rapid.String()).Draw(rt, "values")
		fails := rapid.Bool().Draw(rt, "fails")

		rec := r.NewRecorder[string](nil)
		slot := x.NewCompletionKind[string](x.Location{}, r.Finished)
		for _, v := range values {
			rec.Record(v)
			slot.Evaluate(rec.Snapshot())
		}
		if fails {
			rec.RecordTerminal(r.FailedTerminal(errSomeProblem))
		} else {
			rec.RecordTerminal(r.FinishedTerminal())
		}
		slot.Evaluate(rec.Snapshot())

		outcome := slot.Outcome()
		if !fails && outcome.Status != x.Passed {
			rt.Fatalf("expected pass, got %s", outcome)
		}
		if fails {
			var wrongKind *x.WrongCompletionError
			if outcome.Status != x.Failed || !errors.As(outcome.Err, &wrongKind) {
				rt.Fatalf("expected wrong completion kind, got %s", outcome)
			}
		}
	})
}
