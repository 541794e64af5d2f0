package stest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/capatazlib/go-streamexpect/expect"
)

// VerifyExactMatch is an utility function that checks the input slice of
// OutcomeP predicates match 1 to 1 with a given list of outcomes. It returns
// an error describing the first entry that did not match.
func VerifyExactMatch(preds []OutcomeP, given []expect.Outcome) error {
	if len(preds) != len(given) {
		return fmt.Errorf(
			"Expecting exact match, but length is not the same:\nwant %d\ngiven: %d\noutcomes:\n%s",
			len(preds),
			len(given),
			renderOutcomes(given),
		)
	}
	for i, pred := range preds {
		if !pred.Call(given[i]) {
			return fmt.Errorf(
				"Expecting exact match, but entry %d did not match:\ncriteria:%s\noutcome:%s",
				i,
				pred.String(),
				given[i].String(),
			)
		}
	}
	return nil
}

func renderOutcomes(outcomes []expect.Outcome) string {
	acc := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		acc = append(acc, o.String())
	}
	return strings.Join(acc, "\n")
}

// AssertExactMatch is an assertion that checks the input slice of OutcomeP
// predicates match 1 to 1 with a given list of outcomes.
func AssertExactMatch(t testing.TB, outcomes []expect.Outcome, preds []OutcomeP) {
	t.Helper()
	err := VerifyExactMatch(preds, outcomes)
	if err != nil {
		t.Error(err)
	}
}
