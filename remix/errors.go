package remix

import (
	"fmt"
)

type ErrInvalidRemixMap struct {
	Position  int
	Index     int
	NumPlanes int
}

func (e ErrInvalidRemixMap) Error() string {
	return fmt.Sprintf("remix map entry #%d refers to plane %d, but the frame has %d planes", e.Position, e.Index, e.NumPlanes)
}

type ErrOutOfMemory struct {
	Err error
}

func (e ErrOutOfMemory) Error() string {
	return fmt.Sprintf("unable to allocate the remix frame buffer: %v", e.Err)
}

func (e ErrOutOfMemory) Unwrap() error {
	return e.Err
}
