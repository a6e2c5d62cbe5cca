package submission

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrorKind classifies run failures.
type ErrorKind string

const (
	KindReadFailure         ErrorKind = "read_failure"
	KindEstimationFailure   ErrorKind = "estimation_failure"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindSubmissionFailure   ErrorKind = "submission_failure"
	KindCompletionTimeout   ErrorKind = "completion_timeout"
	KindWatchFailure        ErrorKind = "watch_failure"
	KindCancelled           ErrorKind = "cancelled"
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrReadFailure         = errors.New("failed to read account state")
	ErrEstimationFailure   = errors.New("failed to estimate step cost")
	ErrInsufficientBalance = errors.New("insufficient native balance")
	ErrSubmissionFailure   = errors.New("step submission failed")
	ErrCompletionTimeout   = errors.New("timed out waiting for completion event")
	ErrWatchFailure        = errors.New("completion watch failed")
	ErrCancelled           = errors.New("run cancelled")
)

var sentinels = map[ErrorKind]error{
	KindReadFailure:         ErrReadFailure,
	KindEstimationFailure:   ErrEstimationFailure,
	KindInsufficientBalance: ErrInsufficientBalance,
	KindSubmissionFailure:   ErrSubmissionFailure,
	KindCompletionTimeout:   ErrCompletionTimeout,
	KindWatchFailure:        ErrWatchFailure,
	KindCancelled:           ErrCancelled,
}

// Error carries enough detail to render a precise message: the kind, the
// offending step and, for insufficient balance, the shortfall in wei.
type Error struct {
	Kind      ErrorKind
	Step      StepKind
	Shortfall *big.Int
	Err       error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if s, ok := sentinels[e.Kind]; ok {
		msg = s.Error()
	}
	if e.Step != "" {
		msg = fmt.Sprintf("%s (step %s)", msg, e.Step)
	}
	if e.Shortfall != nil {
		msg = fmt.Sprintf("%s: short by %s wei", msg, e.Shortfall)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func newError(kind ErrorKind, step StepKind, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

// KindOf returns the kind of err, or "" when err is not a run error.
func KindOf(err error) ErrorKind {
	var runErr *Error
	if errors.As(err, &runErr) {
		return runErr.Kind
	}
	return ""
}
