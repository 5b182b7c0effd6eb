package types

import (
	"fmt"
	"strings"
)

// HardwareConfigMethod is a bitmask of the ways a codec can be bound to
// hardware; the values are copied from libav's AV_CODEC_HW_CONFIG_METHOD_*.
type HardwareConfigMethod int

const (
	HardwareConfigMethodHWDeviceCtx = HardwareConfigMethod(0x01)
	HardwareConfigMethodHWFramesCtx = HardwareConfigMethod(0x02)
	HardwareConfigMethodInternal    = HardwareConfigMethod(0x04)
	HardwareConfigMethodAdHoc       = HardwareConfigMethod(0x08)
)

func (m HardwareConfigMethod) Has(flag HardwareConfigMethod) bool {
	return m&flag == flag
}

func (m HardwareConfigMethod) String() string {
	var parts []string
	for _, item := range []struct {
		Flag HardwareConfigMethod
		Name string
	}{
		{HardwareConfigMethodHWDeviceCtx, "hw_device_ctx"},
		{HardwareConfigMethodHWFramesCtx, "hw_frames_ctx"},
		{HardwareConfigMethodInternal, "internal"},
		{HardwareConfigMethodAdHoc, "ad_hoc"},
	} {
		if m.Has(item.Flag) {
			parts = append(parts, item.Name)
			m &^= item.Flag
		}
	}
	if m != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", int(m)))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// HardwareConfig is one codec-declared way to use a hardware device.
type HardwareConfig struct {
	DeviceType  HardwareDeviceType
	PixelFormat PixelFormat
	Methods     HardwareConfigMethod
}

func (cfg HardwareConfig) String() string {
	return fmt.Sprintf("%s/%s/%s", cfg.DeviceType, cfg.PixelFormat, cfg.Methods)
}
