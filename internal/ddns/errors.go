package ddns

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDomain indicates no hosted zone is a suffix of the domain.
var ErrUnknownDomain = errors.New("unknown domain")

// IsUnknownDomain returns true if err reports an unresolvable domain.
func IsUnknownDomain(err error) bool {
	return errors.Is(err, ErrUnknownDomain)
}

// RecordFailure is one record set whose write was rejected.
type RecordFailure struct {
	RecordID string
	Action   Action
	Err      error
}

func (f RecordFailure) Error() string {
	if f.RecordID == "" {
		return fmt.Sprintf("%s: %v", f.Action, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Action, f.RecordID, f.Err)
}

// PartialUpdateError is returned when at least one matched record could not
// be written. Successful writes in the same call are already committed.
type PartialUpdateError struct {
	Domain    string
	Failures  []RecordFailure
	Succeeded int
}

func (e *PartialUpdateError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("updating %s: %d failed, %d succeeded: %s",
		e.Domain, len(e.Failures), e.Succeeded, strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialUpdateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// IsPartialUpdate returns true if err is, or wraps, a PartialUpdateError.
func IsPartialUpdate(err error) bool {
	var pe *PartialUpdateError
	return errors.As(err, &pe)
}
