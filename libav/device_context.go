package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
)

type DeviceContext struct {
	*astiav.HardwareDeviceContext
	Type types.HardwareDeviceType
}

var _ hwdevice.DeviceContext = (*DeviceContext)(nil)

func (d *DeviceContext) String() string {
	return fmt.Sprintf("DeviceContext(%s, %p)", d.Type, d.HardwareDeviceContext)
}

func (d *DeviceContext) Close(ctx context.Context) error {
	logger.Debugf(ctx, "freeing %s", d)
	if d.HardwareDeviceContext == nil {
		return nil
	}
	d.HardwareDeviceContext.Free()
	d.HardwareDeviceContext = nil
	return nil
}

type FramePool struct {
	*astiav.HardwareFramesContext
	PixelFormat types.PixelFormat
}

var _ hwdevice.FramePool = (*FramePool)(nil)

func (p *FramePool) Close(ctx context.Context) error {
	logger.Debugf(ctx, "freeing the %s frame pool %p", p.PixelFormat, p.HardwareFramesContext)
	if p.HardwareFramesContext == nil {
		return nil
	}
	p.HardwareFramesContext.Free()
	p.HardwareFramesContext = nil
	return nil
}
