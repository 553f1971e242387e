package authz

import (
	"errors"
	"fmt"
)

// ForbiddenError is returned by the enforcing functions when a check does
// not pass. It carries the missing permission tag (or the not-a-member
// reason) so callers can produce a useful message; the engine itself never
// formats user-facing text.
type ForbiddenError struct {
	// Permission is the tag that was required and missing. Empty for
	// membership failures.
	Permission Permission
	// Reason is a short machine-oriented cause, e.g. "not a member".
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Permission != "" {
		return fmt.Sprintf("forbidden: missing permission %q", e.Permission)
	}
	return "forbidden: " + e.Reason
}

func newMissingPermission(perm Permission) *ForbiddenError {
	return &ForbiddenError{Permission: perm}
}

func newNotAMember() *ForbiddenError {
	return &ForbiddenError{Reason: "not a member"}
}

// IsForbidden reports whether err is an engine authorization failure, as
// opposed to a store failure.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
