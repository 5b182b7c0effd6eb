package libav

import (
	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/types"
)

type Codec struct {
	*astiav.Codec
}

var _ hwdevice.Codec = (*Codec)(nil)

func (c *Codec) Name() string {
	return c.Codec.Name()
}

// HardwareConfigs implements hwdevice.Codec.
func (c *Codec) HardwareConfigs() []types.HardwareConfig {
	var result []types.HardwareConfig
	for _, cfg := range c.Codec.HardwareConfigs() {
		result = append(result, types.HardwareConfig{
			DeviceType:  HardwareDeviceTypeFromAstiav(cfg.HardwareDeviceType()),
			PixelFormat: PixelFormatFromAstiav(cfg.PixelFormat()),
			Methods:     HardwareConfigMethodFromAstiav(cfg.MethodFlags()),
		})
	}
	return result
}

func (c *Codec) astiavPixelFormat(pixelFormat types.PixelFormat) (astiav.PixelFormat, bool) {
	for _, cfg := range c.Codec.HardwareConfigs() {
		if PixelFormatFromAstiav(cfg.PixelFormat()) == pixelFormat {
			return cfg.PixelFormat(), true
		}
	}
	return astiav.PixelFormatNone, false
}
