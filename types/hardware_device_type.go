// hardware_device_type.go defines the HardwareDeviceType enum and its methods.

// Package types provides the cgo-free types shared by the avhwaccel packages.
package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type HardwareDeviceType int

const (
	// the constants are copied from libav's enum AVHWDeviceType:
	HardwareDeviceTypeNone         = HardwareDeviceType(0x0)
	HardwareDeviceTypeVDPAU        = HardwareDeviceType(0x1)
	HardwareDeviceTypeCUDA         = HardwareDeviceType(0x2)
	HardwareDeviceTypeVAAPI        = HardwareDeviceType(0x3)
	HardwareDeviceTypeDXVA2        = HardwareDeviceType(0x4)
	HardwareDeviceTypeQSV          = HardwareDeviceType(0x5)
	HardwareDeviceTypeVideoToolbox = HardwareDeviceType(0x6)
	HardwareDeviceTypeD3D11VA      = HardwareDeviceType(0x7)
	HardwareDeviceTypeDRM          = HardwareDeviceType(0x8)
	HardwareDeviceTypeOpenCL       = HardwareDeviceType(0x9)
	HardwareDeviceTypeMediaCodec   = HardwareDeviceType(0xa)
	HardwareDeviceTypeVulkan       = HardwareDeviceType(0xb)
	HardwareDeviceTypeD3D12VA      = HardwareDeviceType(0xc)
)

// HardwareDeviceTypes returns every known device type except "none".
func HardwareDeviceTypes() []HardwareDeviceType {
	return []HardwareDeviceType{
		HardwareDeviceTypeVDPAU,
		HardwareDeviceTypeCUDA,
		HardwareDeviceTypeVAAPI,
		HardwareDeviceTypeDXVA2,
		HardwareDeviceTypeQSV,
		HardwareDeviceTypeVideoToolbox,
		HardwareDeviceTypeD3D11VA,
		HardwareDeviceTypeDRM,
		HardwareDeviceTypeOpenCL,
		HardwareDeviceTypeMediaCodec,
		HardwareDeviceTypeVulkan,
		HardwareDeviceTypeD3D12VA,
	}
}

func (t HardwareDeviceType) String() string {
	switch t {
	case HardwareDeviceTypeNone:
		return "none"
	case HardwareDeviceTypeCUDA:
		return "cuda"
	case HardwareDeviceTypeDRM:
		return "drm"
	case HardwareDeviceTypeDXVA2:
		return "dxva2"
	case HardwareDeviceTypeD3D11VA:
		return "d3d11va"
	case HardwareDeviceTypeD3D12VA:
		return "d3d12va"
	case HardwareDeviceTypeOpenCL:
		return "opencl"
	case HardwareDeviceTypeQSV:
		return "qsv"
	case HardwareDeviceTypeVAAPI:
		return "vaapi"
	case HardwareDeviceTypeVDPAU:
		return "vdpau"
	case HardwareDeviceTypeVideoToolbox:
		return "videotoolbox"
	case HardwareDeviceTypeMediaCodec:
		return "mediacodec"
	case HardwareDeviceTypeVulkan:
		return "vulkan"
	}
	return fmt.Sprintf("unknown_%X", int64(t))
}

// HardwareDeviceTypeFromString resolves a device type by its libav name.
//
// It returns HardwareDeviceTypeNone if the name is unknown (or is "none").
func HardwareDeviceTypeFromString(s string) HardwareDeviceType {
	s = strings.Trim(strings.ToLower(s), " \n\r\t")
	for _, candidate := range HardwareDeviceTypes() {
		if candidate.String() == s {
			return candidate
		}
	}
	return HardwareDeviceTypeNone
}

func (t *HardwareDeviceType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("unable to decode the hardware device type: %w", err)
	}
	s = strings.Trim(strings.ToLower(s), " \n\r\t")
	if s == "" || s == HardwareDeviceTypeNone.String() {
		*t = HardwareDeviceTypeNone
		return nil
	}
	r := HardwareDeviceTypeFromString(s)
	if r == HardwareDeviceTypeNone {
		return fmt.Errorf("unknown hardware device type: '%s'", s)
	}
	*t = r
	return nil
}

func (t HardwareDeviceType) MarshalYAML() (any, error) {
	return t.String(), nil
}
