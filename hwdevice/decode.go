package hwdevice

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
	"github.com/xaionaro-go/xsync"
)

const (
	reasonDecoderNoDeviceType = "decoder does not support any device type"
	reasonNoSuitableDevice    = "no suitable hwaccel device found"
)

// InputStream is a decoded input stream as seen by the hardware binder.
type InputStream struct {
	Index   int
	Decoder DecoderContext

	HWAccel           HWAccel
	HWAccelDeviceType types.HardwareDeviceType

	// HWAccelDevice is the device path used to create a device of
	// HWAccelDeviceType if none is registered and HWAccelAutoCreate is set.
	HWAccelDevice     string
	HWAccelAutoCreate bool

	locker    xsync.Mutex
	state     StreamState
	device    *Device
	deviceRef *DeviceRef
}

func (s *InputStream) State() StreamState {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &s.locker, func() StreamState {
		return s.state
	})
}

// Device returns the device the stream is bound to (nil if not bound).
func (s *InputStream) Device() *Device {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &s.locker, func() *Device {
		return s.device
	})
}

// DeviceRef returns the stream's own reference on the bound device context.
func (s *InputStream) DeviceRef() *DeviceRef {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &s.locker, func() *DeviceRef {
		return s.deviceRef
	})
}

// Release drops the stream's reference on the device; the stream
// transitions from Bound to Released. Calling it in other states is a no-op.
func (s *InputStream) Release(ctx context.Context) error {
	return xsync.DoR1(ctx, &s.locker, func() error {
		if s.state != StreamStateBound {
			return nil
		}
		s.state = StreamStateReleased
		err := s.deviceRef.Release(ctx)
		s.deviceRef = nil
		return err
	})
}

// SetupForDecode binds a registered device to the decoder of the stream
// according to the requested hardware acceleration.
func (r *Registry) SetupForDecode(
	ctx context.Context,
	ist *InputStream,
) error {
	ctx = belt.WithField(ctx, "input_stream", ist.Index)
	return xsync.DoR1(ctx, &ist.locker, func() error {
		return xsync.DoA2R1(ctx, &r.locker, r.setupForDecode, ctx, ist)
	})
}

func (r *Registry) setupForDecode(
	ctx context.Context,
	ist *InputStream,
) (_err error) {
	logger.Tracef(ctx, "setupForDecode(%s, %s)", ist.HWAccel, ist.HWAccelDeviceType)
	defer func() { logger.Tracef(ctx, "/setupForDecode(%s, %s): %v", ist.HWAccel, ist.HWAccelDeviceType, _err) }()

	if ist.state != StreamStateUnconfigured {
		return ErrStreamState{State: ist.state}
	}
	if ist.HWAccel == HWAccelNone {
		ist.state = StreamStateDisabled
		return nil
	}

	codec := ist.Decoder.Codec()
	predicate := func(cfg types.HardwareConfig) bool { return true }
	if ist.HWAccel == HWAccelGeneric {
		predicate = func(cfg types.HardwareConfig) bool {
			return cfg.DeviceType == ist.HWAccelDeviceType
		}
	}

	dev, _, anyMatched := r.matchConfig(ctx, codec, predicate)
	if !anyMatched {
		logger.Errorf(ctx, "Decoder does not support any device type")
		return ErrNoSuitableDevice{Codec: codec.Name(), Reason: reasonDecoderNoDeviceType}
	}
	if dev == nil && ist.HWAccel == HWAccelGeneric && ist.HWAccelAutoCreate {
		logger.Debugf(ctx, "no %s device registered, creating one using device '%s'", ist.HWAccelDeviceType, ist.HWAccelDevice)
		var err error
		dev, err = r.initFromType(ctx, ist.HWAccelDeviceType, ist.HWAccelDevice)
		if err != nil {
			var errOOM ErrOutOfMemory
			if errors.As(err, &errOOM) {
				return err
			}
			logger.Warnf(ctx, "unable to create a %s device: %v", ist.HWAccelDeviceType, err)
			dev = nil
		}
	}
	if dev == nil {
		logger.Errorf(ctx, "No suitable hwaccel device found")
		return ErrNoSuitableDevice{Codec: codec.Name(), Reason: reasonNoSuitableDevice}
	}

	ctx = belt.WithField(ctx, "device_name", dev.Name)
	ref := dev.Clone()
	if ref == nil {
		return ErrDeviceReleased{Name: dev.Name}
	}
	if err := ist.Decoder.SetHardwareDeviceContext(ctx, ref.Context()); err != nil {
		if releaseErr := ref.Release(ctx); releaseErr != nil {
			logger.Errorf(ctx, "unable to release %s: %v", dev, releaseErr)
		}
		return fmt.Errorf("unable to set the hardware device context of %s to the decoder: %w", dev, err)
	}

	ist.deviceRef = ref
	ist.device = dev
	ist.state = StreamStateBound
	logger.Debugf(ctx, "the decoder '%s' is bound to %s", codec.Name(), dev)
	return nil
}
