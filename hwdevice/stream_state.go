package hwdevice

import (
	"fmt"
)

// StreamState is the hardware binding state of a stream:
//
//	Unconfigured -> Disabled
//	Unconfigured -> Bound -> Released
type StreamState int

const (
	StreamStateUnconfigured = StreamState(iota)
	StreamStateDisabled
	StreamStateBound
	StreamStateReleased
)

func (s StreamState) String() string {
	switch s {
	case StreamStateUnconfigured:
		return "unconfigured"
	case StreamStateDisabled:
		return "disabled"
	case StreamStateBound:
		return "bound"
	case StreamStateReleased:
		return "released"
	}
	return fmt.Sprintf("unknown_stream_state_%d", int(s))
}

// HWAccel is the kind of hardware acceleration requested for decoding.
type HWAccel int

const (
	HWAccelNone = HWAccel(iota)

	// HWAccelAuto uses the first hardware configuration of the decoder
	// having a registered device.
	HWAccelAuto

	// HWAccelGeneric uses the device type requested in the stream.
	HWAccelGeneric
)

func (a HWAccel) String() string {
	switch a {
	case HWAccelNone:
		return "none"
	case HWAccelAuto:
		return "auto"
	case HWAccelGeneric:
		return "generic"
	}
	return fmt.Sprintf("unknown_hwaccel_%d", int(a))
}
