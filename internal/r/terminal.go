package r

import (
	"fmt"
)

// TerminalTag specifies the completion state of an observed stream. The zero
// value is Pending.
type TerminalTag uint32

const (
	// Pending indicates the stream has not terminated yet
	Pending TerminalTag = iota
	// Finished indicates the stream terminated without errors
	Finished
	// Failed indicates the stream terminated with an error
	Failed
)

// String returns a string representation of the current TerminalTag
func (tag TerminalTag) String() string {
	switch tag {
	case Pending:
		return "Pending"
	case Finished:
		return "Finished"
	case Failed:
		return "Failed"
	default:
		return "<Unknown>"
	}
}

// Terminal is the completion descriptor of a stream: pending, finished or
// failed with an error value.
type Terminal struct {
	tag TerminalTag
	err error
}

// FinishedTerminal returns the Terminal of a stream that completed without
// errors
func FinishedTerminal() Terminal {
	return Terminal{tag: Finished}
}

// FailedTerminal returns the Terminal of a stream that failed with the given
// error. It panics if err is nil; use TerminalFromErr when the error may be
// nil.
func FailedTerminal(err error) Terminal {
	if err == nil {
		panic("FailedTerminal requires a non-nil error")
	}
	return Terminal{tag: Failed, err: err}
}

// TerminalFromErr builds the Terminal a stream reports on completion; nil
// means the stream finished.
func TerminalFromErr(err error) Terminal {
	if err == nil {
		return FinishedTerminal()
	}
	return FailedTerminal(err)
}

// GetTag returns the TerminalTag of this Terminal
func (t Terminal) GetTag() TerminalTag {
	return t.tag
}

// Err returns the error the stream failed with, nil unless the tag is Failed
func (t Terminal) Err() error {
	return t.err
}

// IsPending indicates the stream has not terminated yet
func (t Terminal) IsPending() bool {
	return t.tag == Pending
}

// String returns an string representation for the Terminal
func (t Terminal) String() string {
	if t.tag == Failed {
		return fmt.Sprintf("Failed(%v)", t.err)
	}
	return t.tag.String()
}
