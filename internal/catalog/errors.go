package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrServiceNotFound is returned when no service matches a name.
	ErrServiceNotFound = errors.New("catalog: service not found")

	// ErrSpecialistNotFound is returned when no specialist matches a name.
	ErrSpecialistNotFound = errors.New("catalog: specialist not found")
)

// NotFoundError carries the names that were available at lookup time.
type NotFoundError struct {
	Query     string
	Available []string
	kind      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %q (available: %s)", e.kind, e.Query, strings.Join(e.Available, ", "))
}

func (e *NotFoundError) Unwrap() error { return e.kind }
