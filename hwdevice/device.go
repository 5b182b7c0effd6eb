// Package hwdevice manages the hardware devices of a transcoding session:
// a registry of named device contexts, the device specification
// mini-language, matching codecs against registered devices and binding
// devices to decoders, encoders and filter graphs.
package hwdevice

import (
	"fmt"

	"github.com/xaionaro-go/avhwaccel/types"
)

type Device struct {
	Name types.HardwareDeviceName
	Type types.HardwareDeviceType

	// DerivedFrom is the name of the source device if the device was
	// derived ("type=name@source"), empty otherwise.
	DerivedFrom types.HardwareDeviceName

	// ref is the registry's own reference on the device context; it is
	// released only by the registry.
	ref *DeviceRef
}

// Context returns nil once the registry released the device.
func (d *Device) Context() DeviceContext {
	if d == nil {
		return nil
	}
	return d.ref.Context()
}

// Clone acquires a reference on the device context owned by the caller.
// Returns nil once the registry released the device.
func (d *Device) Clone() *DeviceRef {
	if d == nil {
		return nil
	}
	return d.ref.Clone()
}

// RefCount returns the amount of not-released references on the context.
func (d *Device) RefCount() int64 {
	if d == nil {
		return 0
	}
	return d.ref.RefCount()
}

func (d *Device) String() string {
	if d == nil {
		return "<nil>"
	}
	if d.DerivedFrom != "" {
		return fmt.Sprintf("%s(%s@%s)", d.Name, d.Type, d.DerivedFrom)
	}
	return fmt.Sprintf("%s(%s)", d.Name, d.Type)
}
