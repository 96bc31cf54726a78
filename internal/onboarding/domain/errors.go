package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("user not authenticated")
	ErrBusinessNotFound = errors.New("business not found")
)

// PersistenceError wraps a storage failure during submission.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
