package slurm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolNotFound is returned when an external executable cannot be
	// resolved. It is a configuration problem and never retried.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvariantViolation is returned when a mutation scoped by primary
	// key reports more than one affected record.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrHierarchy is returned when a tree listing does not list parents
	// before their children.
	ErrHierarchy = errors.New("malformed association hierarchy")
)

// AccountManagerError carries the verbatim output of a failed accounting
// tool invocation.
type AccountManagerError struct {
	Output string
}

func (e *AccountManagerError) Error() string {
	return strings.TrimSpace(e.Output)
}

// ControlError carries the verbatim output of a failed control tool
// invocation.
type ControlError struct {
	ObjectType string
	Output     string
}

func (e *ControlError) Error() string {
	return strings.TrimSpace(e.Output)
}

// NotFoundError is returned by Get when no record matched.
type NotFoundError struct {
	ObjectType string
	Filters    Fields
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s matching %s not found", e.ObjectType, e.Filters)
}

// MultipleResultsError is returned by Get when more than one record matched.
type MultipleResultsError struct {
	ObjectType string
	Filters    Fields
	Count      int
}

func (e *MultipleResultsError) Error() string {
	return fmt.Sprintf("%d %s records match %s, expected one", e.Count, e.ObjectType, e.Filters)
}

// CreateError is returned when the accounting tool reports that nothing was
// added, usually because the record already exists.
type CreateError struct {
	ObjectType string
	Attributes Fields
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create new %s %s, maybe it already exists?", e.ObjectType, e.Attributes)
}

// ValidationError rejects caller input before any subprocess is started.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
