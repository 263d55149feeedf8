package ratingstore

import (
	"errors"
	"fmt"
)

// ErrIO marks filesystem failures other than a missing file: permissions,
// a full disk, a path that is a directory.
var ErrIO = errors.New("ratings store io failure")

// IOError describes a failed filesystem operation on the ratings document.
// errors.Is(err, ErrIO) reports true for every IOError.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ratings store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
