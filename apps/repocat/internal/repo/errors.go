package repo

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when the host reports that a repository, branch
// or path does not exist.
type NotFoundError struct {
	Owner  string
	Repo   string
	Path   string
	Branch string
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	where := e.Owner + "/" + e.Repo
	if e.Path != "" {
		where += "/" + e.Path
	}
	if e.Branch != "" {
		return fmt.Sprintf("%s not found at %q", where, e.Branch)
	}
	return fmt.Sprintf("%s not found", where)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// StatusError is returned when a raw fetch answers with an unexpected status.
type StatusError struct {
	URL  string
	Code int
}

// Error implements the error interface.
func (e StatusError) Error() string {
	return fmt.Sprintf("GET %s returned %d", e.URL, e.Code)
}
