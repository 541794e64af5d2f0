package x

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/onsi/gomega/types"

	"github.com/capatazlib/go-streamexpect/internal/r"
)

// Predicate checks a property of a value observed on a stream. Check returns
// nil when the property holds, otherwise it returns an error describing the
// failure.
type Predicate[A any] interface {

	// Check will execute the logic of this predicate
	Check(subject string, actual A) error

	// Returns an string representation of this predicate (for debugging
	// purposes)
	String() string
}

// cmpOpts allow comparison of structs with unexported fields, and treat nil
// and empty slices/maps as equal.
var cmpOpts = []cmp.Option{
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmpopts.EquateEmpty(),
}

// EqualP is a predicate that asserts a value is equal to an expected value
type EqualP[A any] struct {
	expected A
}

// Equal returns a predicate that asserts a value is equal to the given one
func Equal[A any](expected A) Predicate[A] {
	return EqualP[A]{expected: expected}
}

// Check compares actual with the expected value
func (p EqualP[A]) Check(subject string, actual A) error {
	if cmp.Equal(p.expected, actual, cmpOpts...) {
		return nil
	}
	return &MismatchError{
		subject:  subject,
		expected: p.expected,
		actual:   actual,
		diff:     cmp.Diff(p.expected, actual, cmpOpts...),
	}
}

func (p EqualP[A]) String() string {
	return fmt.Sprintf("== %#v", p.expected)
}

// FuncP is a predicate that delegates to a function; the function returns a
// non-nil error when the value does not satisfy it.
type FuncP[A any] struct {
	fn func(A) error
}

// Func returns a predicate that uses the given function to check a value
func Func[A any](fn func(A) error) Predicate[A] {
	return FuncP[A]{fn: fn}
}

// Check calls the predicate function with actual
func (p FuncP[A]) Check(subject string, actual A) error {
	if err := p.fn(actual); err != nil {
		return &MismatchError{subject: subject, actual: actual, err: err}
	}
	return nil
}

func (p FuncP[A]) String() string {
	return "func(...) error"
}

// MatcherP is a predicate backed by a gomega matcher
type MatcherP[A any] struct {
	matcher types.GomegaMatcher
}

// Matcher returns a predicate that uses the given gomega matcher
func Matcher[A any](matcher types.GomegaMatcher) Predicate[A] {
	return MatcherP[A]{matcher: matcher}
}

// Check runs the gomega matcher on actual
func (p MatcherP[A]) Check(subject string, actual A) error {
	ok, err := p.matcher.Match(actual)
	if err != nil {
		return &MismatchError{subject: subject, actual: actual, err: err}
	}
	if !ok {
		return &MismatchError{
			subject: subject,
			actual:  actual,
			err:     errors.New(p.matcher.FailureMessage(actual)),
		}
	}
	return nil
}

func (p MatcherP[A]) String() string {
	return fmt.Sprintf("matches %T", p.matcher)
}

// TerminalTagP is a predicate that asserts the TerminalTag of a terminal state
// matches an expected one, the error payload of a failure is ignored.
type TerminalTagP struct {
	tag r.TerminalTag
}

// TerminalTag returns a predicate that checks the kind of completion
func TerminalTag(tag r.TerminalTag) Predicate[r.Terminal] {
	return TerminalTagP{tag: tag}
}

// Check compares the tag of the given terminal state
func (p TerminalTagP) Check(_ string, actual r.Terminal) error {
	if actual.GetTag() == p.tag {
		return nil
	}
	return &WrongCompletionError{want: p.tag, got: actual}
}

func (p TerminalTagP) String() string {
	return fmt.Sprintf("tag == %s", p.tag)
}

// ErrorIsP is a predicate that asserts an error matches a target with
// errors.Is semantics
type ErrorIsP struct {
	target error
}

// ErrorIs returns a predicate that checks an error with errors.Is
func ErrorIs(target error) Predicate[error] {
	return ErrorIsP{target: target}
}

// Check verifies actual is (or wraps) the target error
func (p ErrorIsP) Check(subject string, actual error) error {
	if errors.Is(actual, p.target) {
		return nil
	}
	return &MismatchError{subject: subject, expected: p.target, actual: actual}
}

func (p ErrorIsP) String() string {
	return fmt.Sprintf("errors.Is(%v)", p.target)
}

// AnyP is a predicate that always holds
type AnyP[A any] struct{}

// Check always returns nil
func (AnyP[A]) Check(string, A) error {
	return nil
}

func (AnyP[A]) String() string {
	return "any"
}
