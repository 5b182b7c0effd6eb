package hwdevice

import (
	"context"

	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
	"github.com/xaionaro-go/xsync"
)

// MatchByCodec returns the registered device of the first hardware
// configuration of the codec (in the codec-declared order) that can be
// bound through a device context and whose type has an unambiguous
// registered device. Returns nil if there is none.
func (r *Registry) MatchByCodec(
	ctx context.Context,
	codec Codec,
) *Device {
	return xsync.DoA2R1(ctx, &r.locker, r.matchByCodec, ctx, codec)
}

func (r *Registry) matchByCodec(
	ctx context.Context,
	codec Codec,
) *Device {
	dev, _, _ := r.matchConfig(ctx, codec, func(types.HardwareConfig) bool { return true })
	return dev
}

// matchConfig scans the device-context hardware configurations of the
// codec that satisfy the predicate and returns the first one having a
// registered device. anyMatched reports whether the predicate accepted at
// least one configuration, which lets callers tell "unsupported" from
// "no device".
func (r *Registry) matchConfig(
	ctx context.Context,
	codec Codec,
	predicate func(types.HardwareConfig) bool,
) (_dev *Device, _cfg types.HardwareConfig, anyMatched bool) {
	logger.Tracef(ctx, "matchConfig(%s)", codec.Name())
	defer func() { logger.Tracef(ctx, "/matchConfig(%s): %v %v %v", codec.Name(), _dev, _cfg, anyMatched) }()
	for _, cfg := range codec.HardwareConfigs() {
		if !cfg.Methods.Has(types.HardwareConfigMethodHWDeviceCtx) {
			continue
		}
		if !predicate(cfg) {
			continue
		}
		anyMatched = true
		if dev := r.getByType(cfg.DeviceType); dev != nil {
			return dev, cfg, true
		}
	}
	return nil, types.HardwareConfig{}, anyMatched
}

// framesConfig returns the first configuration of the codec that can be
// bound through a frames context of the given device type.
func framesConfig(
	codec Codec,
	deviceType types.HardwareDeviceType,
) (types.HardwareConfig, bool) {
	for _, cfg := range codec.HardwareConfigs() {
		if !cfg.Methods.Has(types.HardwareConfigMethodHWFramesCtx) {
			continue
		}
		if cfg.DeviceType != deviceType {
			continue
		}
		return cfg, true
	}
	return types.HardwareConfig{}, false
}
