// runtime.go defines the interfaces of the hardware runtime and of the pipeline stages hwdevice binds devices to.

package hwdevice

import (
	"context"

	"github.com/xaionaro-go/avhwaccel/types"
)

// DeviceContext is an instantiated hardware device context owned by Runtime.
type DeviceContext interface {
	Close(ctx context.Context) error
}

// FramePool is a negotiated pool of hardware frames an encoder draws from.
type FramePool interface {
	Close(ctx context.Context) error
}

// Runtime is the hardware-acceleration runtime (for example libav).
type Runtime interface {
	// CreateDevice creates a device context; an empty devicePath
	// selects the default device of the type.
	CreateDevice(
		ctx context.Context,
		deviceType types.HardwareDeviceType,
		devicePath string,
		options types.DictionaryItems,
	) (DeviceContext, error)

	// CreateDerivedDevice creates a device context of deviceType sharing
	// the underlying resources of source.
	CreateDerivedDevice(
		ctx context.Context,
		deviceType types.HardwareDeviceType,
		source DeviceContext,
	) (DeviceContext, error)

	// NegotiateFramePool returns the frame pool parameters for encoder on
	// device; a nil pool with a nil error means hardware frames are not
	// applicable.
	NegotiateFramePool(
		ctx context.Context,
		encoder EncoderContext,
		device DeviceContext,
		pixelFormat types.PixelFormat,
	) (FramePool, error)
}

// Codec exposes the codec-declared hardware configurations in priority order.
type Codec interface {
	Name() string
	HardwareConfigs() []types.HardwareConfig
}

type DecoderContext interface {
	Codec() Codec
	SetHardwareDeviceContext(ctx context.Context, device DeviceContext) error
}

type EncoderContext interface {
	Codec() Codec
	SetHardwareFramesContext(ctx context.Context, pool FramePool) error
}

type FilterNode interface {
	// FilterName is the name of the filter (e.g. "hwupload"), not of the
	// instance.
	FilterName() string
	SetOption(key, value string) error
}

// FilterDeviceNode is a FilterNode that takes the device context itself
// instead of the device name as the "device" option.
type FilterDeviceNode interface {
	FilterNode
	SetDevice(ctx context.Context, name types.HardwareDeviceName, device DeviceContext) error
}

type FilterGraph interface {
	// SinkInputs returns the media types of the inputs of the graph sink.
	SinkInputs() []types.MediaType
	Filters() []FilterNode
}

type DecoderFinder interface {
	// FindDecoder returns nil if there is no decoder for the media type.
	FindDecoder(ctx context.Context, mediaType types.MediaType) Codec
}
