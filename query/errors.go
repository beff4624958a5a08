package query

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by every ArgumentError.
var ErrInvalidArgument = errors.New("query: invalid argument")

// ArgumentError reports a mandatory builder argument that was not supplied.
// It signals a caller bug and is never folded into the absent Expression.
type ArgumentError struct {
	Op  string // builder name, e.g. "RangeNum"
	Arg string // argument name, e.g. "field"
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("query: %s: %s must be defined in range", e.Op, e.Arg)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }
