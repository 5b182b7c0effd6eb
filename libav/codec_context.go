package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/logger"
)

// DecoderContext binds hardware devices to a not-yet-opened decoder.
type DecoderContext struct {
	codec        *Codec
	CodecContext *astiav.CodecContext

	hardwarePixelFormat astiav.PixelFormat
}

var _ hwdevice.DecoderContext = (*DecoderContext)(nil)

func NewDecoderContext(codec *astiav.Codec, codecContext *astiav.CodecContext) *DecoderContext {
	return &DecoderContext{
		codec:        &Codec{Codec: codec},
		CodecContext: codecContext,
	}
}

func (d *DecoderContext) Codec() hwdevice.Codec {
	return d.codec
}

// SetHardwareDeviceContext attaches the device and makes the decoder
// pick the hardware pixel format the codec declares for the device type.
func (d *DecoderContext) SetHardwareDeviceContext(
	ctx context.Context,
	device hwdevice.DeviceContext,
) error {
	dev, ok := device.(*DeviceContext)
	if !ok {
		return ErrUnexpectedType{Expected: "*libav.DeviceContext", Actual: device}
	}
	if dev.HardwareDeviceContext == nil {
		return fmt.Errorf("the device context is already freed")
	}

	d.hardwarePixelFormat = astiav.PixelFormatNone
	for _, cfg := range d.codec.Codec.HardwareConfigs() {
		if HardwareDeviceTypeFromAstiav(cfg.HardwareDeviceType()) != dev.Type {
			continue
		}
		if !cfg.MethodFlags().Has(astiav.CodecHardwareConfigMethodFlagHwDeviceCtx) {
			continue
		}
		d.hardwarePixelFormat = cfg.PixelFormat()
		break
	}

	d.CodecContext.SetHardwareDeviceContext(dev.HardwareDeviceContext)
	if d.hardwarePixelFormat == astiav.PixelFormatNone {
		return nil
	}
	d.CodecContext.SetPixelFormatCallback(func(pfs []astiav.PixelFormat) astiav.PixelFormat {
		for _, pf := range pfs {
			if pf == d.hardwarePixelFormat {
				return pf
			}
		}
		logger.Errorf(ctx, "unable to find appropriate pixel format")
		return astiav.PixelFormatNone
	})
	return nil
}

// EncoderContext binds frame pools to a not-yet-opened encoder; Width,
// Height and SoftwarePixelFormat must be set before the negotiation.
type EncoderContext struct {
	codec               *Codec
	CodecContext        *astiav.CodecContext
	SoftwarePixelFormat astiav.PixelFormat
}

var _ hwdevice.EncoderContext = (*EncoderContext)(nil)

func NewEncoderContext(
	codec *astiav.Codec,
	codecContext *astiav.CodecContext,
	softwarePixelFormat astiav.PixelFormat,
) *EncoderContext {
	return &EncoderContext{
		codec:               &Codec{Codec: codec},
		CodecContext:        codecContext,
		SoftwarePixelFormat: softwarePixelFormat,
	}
}

func (e *EncoderContext) Codec() hwdevice.Codec {
	return e.codec
}

func (e *EncoderContext) SetHardwareFramesContext(
	ctx context.Context,
	pool hwdevice.FramePool,
) error {
	p, ok := pool.(*FramePool)
	if !ok {
		return ErrUnexpectedType{Expected: "*libav.FramePool", Actual: pool}
	}
	if p.HardwareFramesContext == nil {
		return fmt.Errorf("the frame pool is already freed")
	}
	hwPixFmt, ok := e.codec.astiavPixelFormat(p.PixelFormat)
	if !ok {
		return fmt.Errorf("the encoder '%s' does not support pixel format %s", e.codec.Name(), p.PixelFormat)
	}
	logger.Debugf(ctx, "setting pixel format %s and the hardware frames context to the encoder", p.PixelFormat)
	e.CodecContext.SetPixelFormat(hwPixFmt)
	e.CodecContext.SetHardwareFramesContext(p.HardwareFramesContext)
	return nil
}
