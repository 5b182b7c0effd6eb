package libav

import (
	"fmt"
)

type ErrNotImplemented struct {
	Err error
}

func (e ErrNotImplemented) Error() string {
	return fmt.Sprintf("not implemented: %v", e.Err)
}

func (e ErrNotImplemented) Unwrap() error {
	return e.Err
}

type ErrUnexpectedType struct {
	Expected string
	Actual   any
}

func (e ErrUnexpectedType) Error() string {
	return fmt.Sprintf("expected %s, received %T", e.Expected, e.Actual)
}
