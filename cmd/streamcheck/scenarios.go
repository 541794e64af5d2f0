package main

import (
	"context"
	"errors"
	"time"

	"github.com/capatazlib/go-streamexpect/expect"
	"github.com/capatazlib/go-streamexpect/stest"
)

var errUpstream = errors.New("upstream closed")

// scenario is a stream together with the expectations declared over it, and
// the outcomes the library must report for them
type scenario struct {
	name        string
	description string
	run         func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome
	want        []stest.OutcomeP
}

func scenarios() []scenario {
	return []scenario{
		{
			name:        "single-value",
			description: `["cool"] expecting value "cool"`,
			run: func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome {
				return expect.On(rep, expect.FromSlice("cool"), opts...).
					Value("cool").
					WaitForExpectations(timeout)
			},
			want: []stest.OutcomeP{stest.Passed(expect.SingleValue)},
		},
		{
			name:        "single-value-mismatch",
			description: `["cool"] expecting value "neat"`,
			run: func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome {
				return expect.On(rep, expect.FromSlice("cool"), opts...).
					Value("neat").
					WaitForExpectations(timeout)
			},
			want: []stest.OutcomeP{stest.Mismatch(expect.SingleValue)},
		},
		{
			name:        "empty-stream",
			description: `[] expecting value "neat"`,
			run: func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome {
				return expect.On(rep, stest.Empty[string](), opts...).
					Value("neat").
					WaitForExpectations(timeout)
			},
			want: []stest.OutcomeP{stest.Premature(expect.SingleValue)},
		},
		{
			name:        "collected",
			description: `["cool", "neat", "awesome"] expecting the three values`,
			run: func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome {
				return expect.On(rep, expect.FromSlice("cool", "neat", "awesome"), opts...).
					Values("cool", "neat", "awesome").
					WaitForExpectations(timeout)
			},
			want: []stest.OutcomeP{stest.Passed(expect.Collected)},
		},
		{
			name:        "delayed-collected",
			description: `"cool" right away and "neat" 500ms later, expecting both`,
			run: func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome {
				source := expect.Go(func(ctx context.Context, emit func(string)) error {
					emit("cool")
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(500 * time.Millisecond):
					}
					emit("neat")
					return nil
				})
				return expect.On(rep, source, opts...).
					Values("cool", "neat").
					WaitForExpectations(timeout)
			},
			want: []stest.OutcomeP{stest.Passed(expect.Collected)},
		},
		{
			name:        "never-completes",
			description: "a stream that never terminates, expecting a completion",
			run: func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome {
				return expect.On(rep, stest.Never[string](), opts...).
					Completion().
					WaitForExpectations(timeout)
			},
			want: []stest.OutcomeP{stest.TimedOut(expect.CompletionAny)},
		},
		{
			name:        "failure",
			description: "a producer that fails after two values",
			run: func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome {
				source := expect.Go(func(ctx context.Context, emit func(int)) error {
					emit(1)
					emit(2)
					return errUpstream
				})
				return expect.On(rep, source, opts...).
					Values(1, 2).
					FailureValue(errUpstream).
					Success().
					WaitForExpectations(timeout)
			},
			want: []stest.OutcomeP{
				stest.Passed(expect.Collected),
				stest.Passed(expect.FailureValue),
				stest.WrongCompletion(expect.SuccessOnly),
			},
		},
		{
			name:        "ordered",
			description: `["cool", "neat", "awesome"] expecting each value in turn`,
			run: func(rep expect.Reporter, opts []expect.Opt, timeout time.Duration) []expect.Outcome {
				opts = append([]expect.Opt{expect.WithOrderedExpectations()}, opts...)
				return expect.On(rep, expect.FromSlice("cool", "neat", "awesome"), opts...).
					Value("cool").
					Value("neat").
					Value("awesome").
					Success().
					WaitForExpectations(timeout)
			},
			want: []stest.OutcomeP{
				stest.Passed(expect.SingleValue),
				stest.Passed(expect.SingleValue),
				stest.Passed(expect.SingleValue),
				stest.Passed(expect.SuccessOnly),
			},
		},
	}
}

// selectScenarios returns the scenarios with the given names, or all of them
// when no name is given
func selectScenarios(names []string) ([]scenario, error) {
	all := scenarios()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]scenario, len(all))
	for _, sc := range all {
		byName[sc.name] = sc
	}
	acc := make([]scenario, 0, len(names))
	for _, name := range names {
		sc, ok := byName[name]
		if !ok {
			return nil, errorf("unknown scenario %q", name)
		}
		acc = append(acc, sc)
	}
	return acc, nil
}
