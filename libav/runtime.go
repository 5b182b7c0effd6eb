package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
)

const defaultInitialPoolSize = 20

// Runtime creates hardware contexts through libav.
type Runtime struct {
	// InitialPoolSize is the amount of frames preallocated in negotiated
	// frame pools.
	InitialPoolSize int
}

var _ hwdevice.Runtime = (*Runtime)(nil)

func NewRuntime() *Runtime {
	return &Runtime{
		InitialPoolSize: defaultInitialPoolSize,
	}
}

func (rt *Runtime) CreateDevice(
	ctx context.Context,
	deviceType types.HardwareDeviceType,
	devicePath string,
	options types.DictionaryItems,
) (_ret hwdevice.DeviceContext, _err error) {
	logger.Tracef(ctx, "CreateDevice(%s, '%s', '%s')", deviceType, devicePath, options)
	defer func() { logger.Tracef(ctx, "/CreateDevice(%s, '%s', '%s'): %v %v", deviceType, devicePath, options, _ret, _err) }()

	dict := DictionaryItemsToAstiav(options)
	if dict != nil {
		defer dict.Free()
	}

	hwCtx, err := astiav.CreateHardwareDeviceContext(
		HardwareDeviceTypeToAstiav(deviceType),
		devicePath,
		dict,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create hardware (%s:%s) device context: %w", deviceType, devicePath, err)
	}
	return &DeviceContext{
		HardwareDeviceContext: hwCtx,
		Type:                  deviceType,
	}, nil
}

// CreateDerivedDevice is not supported: the binding does not expose
// av_hwdevice_ctx_create_derived.
func (rt *Runtime) CreateDerivedDevice(
	ctx context.Context,
	deviceType types.HardwareDeviceType,
	source hwdevice.DeviceContext,
) (hwdevice.DeviceContext, error) {
	return nil, ErrNotImplemented{Err: fmt.Errorf("deriving a %s device from %v", deviceType, source)}
}

// NegotiateFramePool allocates and initializes a frames context of the
// hardware pixel format sized by the encoder settings. Returns a nil pool
// if the encoder does not declare the pixel format.
func (rt *Runtime) NegotiateFramePool(
	ctx context.Context,
	encoder hwdevice.EncoderContext,
	device hwdevice.DeviceContext,
	pixelFormat types.PixelFormat,
) (_ret hwdevice.FramePool, _err error) {
	logger.Tracef(ctx, "NegotiateFramePool(%s)", pixelFormat)
	defer func() { logger.Tracef(ctx, "/NegotiateFramePool(%s): %v %v", pixelFormat, _ret, _err) }()

	enc, ok := encoder.(*EncoderContext)
	if !ok {
		return nil, ErrUnexpectedType{Expected: "*libav.EncoderContext", Actual: encoder}
	}
	dev, ok := device.(*DeviceContext)
	if !ok {
		return nil, ErrUnexpectedType{Expected: "*libav.DeviceContext", Actual: device}
	}

	hwPixFmt, ok := enc.codec.astiavPixelFormat(pixelFormat)
	if !ok {
		logger.Debugf(ctx, "the encoder does not declare pixel format %s", pixelFormat)
		return nil, nil
	}

	framesCtx := astiav.AllocHardwareFramesContext(dev.HardwareDeviceContext)
	if framesCtx == nil {
		return nil, fmt.Errorf("unable to allocate a hardware frames context")
	}
	cc := enc.CodecContext
	framesCtx.SetHardwarePixelFormat(hwPixFmt)
	framesCtx.SetSoftwarePixelFormat(enc.SoftwarePixelFormat)
	framesCtx.SetWidth(cc.Width())
	framesCtx.SetHeight(cc.Height())
	framesCtx.SetInitialPoolSize(rt.InitialPoolSize)
	if err := framesCtx.Initialize(); err != nil {
		framesCtx.Free()
		return nil, fmt.Errorf("unable to initialize the hardware frames context: %w", err)
	}
	return &FramePool{
		HardwareFramesContext: framesCtx,
		PixelFormat:           pixelFormat,
	}, nil
}
