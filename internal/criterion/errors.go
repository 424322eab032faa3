package criterion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotDefined is matched by errors.Is for every NotDefinedError.
var ErrNotDefined = errors.New("criterion not defined")

// NotDefinedError reports a direct lookup of a criterion id that is not in a
// List.
type NotDefinedError struct {
	// ID is the id that was looked up.
	ID string

	// Defined lists the ids of the list at lookup time, in order.
	Defined []string
}

// Error implements the error interface.
func (e *NotDefinedError) Error() string {
	if len(e.Defined) == 0 {
		return fmt.Sprintf("criterion not defined: %q (list is empty)", e.ID)
	}
	return fmt.Sprintf("criterion not defined: %q (defined: %s)", e.ID, strings.Join(e.Defined, ", "))
}

// Is makes errors.Is(err, ErrNotDefined) hold.
func (e *NotDefinedError) Is(target error) bool {
	return target == ErrNotDefined
}

// IsNotDefined returns true if the error is a NotDefinedError.
// Uses errors.As to handle wrapped errors.
func IsNotDefined(err error) bool {
	var nd *NotDefinedError
	return errors.As(err, &nd)
}
