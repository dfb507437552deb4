package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Stable failure reason codes surfaced in sentence results.
const (
	ReasonTimeout         = "timeout"
	ReasonInvalidResponse = "invalid-response"
	ReasonDeadline        = "deadline-exceeded"
)

// Failure is a non-fatal adapter failure with a stable reason code. Adapters
// return it instead of ad-hoc errors so the processor can record the reason
// as data rather than propagating a request-level error.
type Failure struct {
	Stage  string // "parse" or "code"
	Reason string
	Err    error // underlying cause, may be nil
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Stage, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Stage, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// failureReason maps an adapter error to the reason recorded on the
// sentence. A per-call timeout that raced a document deadline is reported as
// deadline-exceeded, since the document deadline is what actually cut the
// sentence short.
func failureReason(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return ReasonDeadline
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ReasonDeadline
	}
	return err.Error()
}
