// hardware_device_name.go defines the HardwareDeviceName type.

package types

// HardwareDeviceName is the registry-unique name of a hardware device.
type HardwareDeviceName string

func (n HardwareDeviceName) String() string {
	return string(n)
}
