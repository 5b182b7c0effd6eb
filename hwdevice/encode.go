package hwdevice

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/xsync"
)

// OutputStream is an encoded output stream as seen by the hardware binder.
type OutputStream struct {
	Index   int
	Encoder EncoderContext

	locker    xsync.Mutex
	state     StreamState
	device    *Device
	deviceRef *DeviceRef
	framePool FramePool
}

func (s *OutputStream) State() StreamState {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &s.locker, func() StreamState {
		return s.state
	})
}

func (s *OutputStream) Device() *Device {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &s.locker, func() *Device {
		return s.device
	})
}

// FramePool returns the frame pool bound to the encoder (nil if not bound).
func (s *OutputStream) FramePool() FramePool {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &s.locker, func() FramePool {
		return s.framePool
	})
}

// Release closes the frame pool and drops the stream's reference on the
// device.
func (s *OutputStream) Release(ctx context.Context) error {
	return xsync.DoR1(ctx, &s.locker, func() error {
		if s.state != StreamStateBound {
			return nil
		}
		s.state = StreamStateReleased
		var errs []error
		if err := s.framePool.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unable to close the frame pool: %w", err))
		}
		if err := s.deviceRef.Release(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unable to release the device: %w", err))
		}
		s.framePool = nil
		s.deviceRef = nil
		return errors.Join(errs...)
	})
}

// SetupForEncode binds a hardware frame pool to the encoder if the codec
// supports one of the registered devices. Not finding a device or a frame
// pool is not an error: the encoder just stays in software.
func (r *Registry) SetupForEncode(
	ctx context.Context,
	ost *OutputStream,
) error {
	ctx = belt.WithField(ctx, "output_stream", ost.Index)
	return xsync.DoR1(ctx, &ost.locker, func() error {
		return xsync.DoA2R1(ctx, &r.locker, r.setupForEncode, ctx, ost)
	})
}

func (r *Registry) setupForEncode(
	ctx context.Context,
	ost *OutputStream,
) (_err error) {
	logger.Tracef(ctx, "setupForEncode")
	defer func() { logger.Tracef(ctx, "/setupForEncode: %v", _err) }()

	if ost.state != StreamStateUnconfigured {
		return ErrStreamState{State: ost.state}
	}

	codec := ost.Encoder.Codec()
	dev := r.matchByCodec(ctx, codec)
	if dev == nil {
		logger.Debugf(ctx, "no device matches the encoder '%s'", codec.Name())
		ost.state = StreamStateDisabled
		return nil
	}
	ctx = belt.WithField(ctx, "device_name", dev.Name)

	cfg, ok := framesConfig(codec, dev.Type)
	if !ok {
		logger.Debugf(ctx, "the encoder '%s' does not support %s frames contexts", codec.Name(), dev.Type)
		ost.state = StreamStateDisabled
		return nil
	}

	ref := dev.Clone()
	if ref == nil {
		return ErrDeviceReleased{Name: dev.Name}
	}
	releaseRef := func() {
		if err := ref.Release(ctx); err != nil {
			logger.Errorf(ctx, "unable to release %s: %v", dev, err)
		}
	}

	pool, err := r.Runtime.NegotiateFramePool(ctx, ost.Encoder, ref.Context(), cfg.PixelFormat)
	if err != nil {
		releaseRef()
		logger.Warnf(ctx, "%v", ErrRuntime{Op: "negotiate the frame pool", Type: dev.Type, Err: err})
		ost.state = StreamStateDisabled
		return nil
	}
	if pool == nil {
		releaseRef()
		logger.Debugf(ctx, "no frame pool for the encoder '%s' on %s", codec.Name(), dev)
		ost.state = StreamStateDisabled
		return nil
	}

	if err := ost.Encoder.SetHardwareFramesContext(ctx, pool); err != nil {
		if closeErr := pool.Close(ctx); closeErr != nil {
			logger.Errorf(ctx, "unable to close the frame pool: %v", closeErr)
		}
		releaseRef()
		return fmt.Errorf("unable to set the hardware frames context of %s to the encoder: %w", dev, err)
	}

	ost.framePool = pool
	ost.deviceRef = ref
	ost.device = dev
	ost.state = StreamStateBound
	logger.Debugf(ctx, "the encoder '%s' is bound to %s (pixel format %s)", codec.Name(), dev, cfg.PixelFormat)
	return nil
}
