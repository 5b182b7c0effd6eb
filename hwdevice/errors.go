package hwdevice

import (
	"errors"
	"fmt"

	"github.com/xaionaro-go/avhwaccel/types"
)

// ErrInvalidArgument is the class of errors caused by bad user input.
var ErrInvalidArgument = errors.New("invalid argument")

type ErrInvalidSpec struct {
	Spec   string
	Reason string
	Err    error
}

func (e ErrInvalidSpec) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid device specification \"%s\": %s: %v", e.Spec, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid device specification \"%s\": %s", e.Spec, e.Reason)
}

func (e ErrInvalidSpec) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidArgument}
	}
	return []error{ErrInvalidArgument, e.Err}
}

type ErrOutOfMemory struct {
	Reason string
}

func (e ErrOutOfMemory) Error() string {
	return fmt.Sprintf("out of memory: %s", e.Reason)
}

type ErrNoSuitableDevice struct {
	Codec  string
	Reason string
}

func (e ErrNoSuitableDevice) Error() string {
	return fmt.Sprintf("codec '%s': %s", e.Codec, e.Reason)
}

// ErrRuntime is returned when the hardware runtime rejects an operation.
type ErrRuntime struct {
	Op   string
	Type types.HardwareDeviceType
	Err  error
}

func (e ErrRuntime) Error() string {
	return fmt.Sprintf("unable to %s (%s): %v", e.Op, e.Type, e.Err)
}

func (e ErrRuntime) Unwrap() error {
	return e.Err
}

type ErrOptionApply struct {
	Filter string
	Option string
	Err    error
}

func (e ErrOptionApply) Error() string {
	return fmt.Sprintf("unable to set option '%s' of filter '%s': %v", e.Option, e.Filter, e.Err)
}

func (e ErrOptionApply) Unwrap() error {
	return e.Err
}

// ErrDeviceReleased is returned when a device is used after its context
// was released.
type ErrDeviceReleased struct {
	Name types.HardwareDeviceName
}

func (e ErrDeviceReleased) Error() string {
	return fmt.Sprintf("the context of device '%s' is already released", e.Name)
}

type ErrStreamState struct {
	State StreamState
}

func (e ErrStreamState) Error() string {
	return fmt.Sprintf("the stream is already configured (state: %s)", e.State)
}
