package hwdevice

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avhwaccel/internal"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

// defaultNameIndexLimit bounds the "<type><index>" auto-generated names.
const defaultNameIndexLimit = 1000

// Registry is the ordered set of the hardware devices of a session.
//
// All the methods are serialized by a single mutex, so composite
// operations (like "look up the source and register the derived device")
// are atomic against each other.
type Registry struct {
	Runtime    Runtime
	MaxDevices int

	locker  xsync.Mutex
	devices []*Device

	// numDevices mirrors len(devices) for String, which must not take the
	// lock (it may be formatted while the lock is held).
	numDevices atomic.Int64
}

func NewRegistry(
	runtime Runtime,
	opts ...RegistryOption,
) *Registry {
	r := &Registry{
		Runtime: runtime,
	}
	if opt, ok := RegistryOptionLatest[RegistryOptionMaxDevices](opts); ok {
		r.MaxDevices = opt.MaxDevices
	}
	return r
}

func (r *Registry) String() string {
	if r == nil {
		return "Registry(<nil>)"
	}
	return fmt.Sprintf("Registry(%d devices)", r.numDevices.Load())
}

func (r *Registry) Len(ctx context.Context) int {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &r.locker, func() int {
		return len(r.devices)
	})
}

// Devices returns a snapshot of the registered devices in registration order.
func (r *Registry) Devices(ctx context.Context) []*Device {
	return xsync.DoR1(ctx, &r.locker, func() []*Device {
		result := make([]*Device, len(r.devices))
		copy(result, r.devices)
		return result
	})
}

// GetByName returns nil if there is no device with the name.
func (r *Registry) GetByName(
	ctx context.Context,
	name types.HardwareDeviceName,
) *Device {
	return xsync.DoA1R1(ctx, &r.locker, r.getByName, name)
}

func (r *Registry) getByName(name types.HardwareDeviceName) *Device {
	for _, dev := range r.devices {
		if dev.Name == name {
			return dev
		}
	}
	return nil
}

// GetByType returns the device of the type only if it is the only one of
// that type. Zero devices and an ambiguous set of devices are reported the
// same way: nil.
func (r *Registry) GetByType(
	ctx context.Context,
	deviceType types.HardwareDeviceType,
) *Device {
	return xsync.DoA1R1(ctx, &r.locker, r.getByType, deviceType)
}

func (r *Registry) getByType(deviceType types.HardwareDeviceType) *Device {
	var found *Device
	for _, dev := range r.devices {
		if dev.Type != deviceType {
			continue
		}
		if found != nil {
			return nil
		}
		found = dev
	}
	return found
}

func (r *Registry) defaultName(
	deviceType types.HardwareDeviceType,
) (types.HardwareDeviceName, error) {
	for idx := 0; idx < defaultNameIndexLimit; idx++ {
		name := types.HardwareDeviceName(fmt.Sprintf("%s%d", deviceType, idx))
		if r.getByName(name) == nil {
			return name, nil
		}
	}
	return "", ErrOutOfMemory{Reason: fmt.Sprintf("no free default name for a %s device", deviceType)}
}

// add registers the device; on success the registry owns dev.ref.
//
// If the registry cannot grow, it is reset to empty and ErrOutOfMemory
// is returned; dev.ref stays owned by the caller in this case.
func (r *Registry) add(
	ctx context.Context,
	dev *Device,
) (_err error) {
	logger.Tracef(ctx, "add(%s)", dev)
	defer func() { logger.Tracef(ctx, "/add(%s): %v", dev, _err) }()
	internal.Assert(ctx, r.getByName(dev.Name) == nil, dev.Name)
	if r.MaxDevices > 0 && len(r.devices) >= r.MaxDevices {
		logger.Errorf(ctx, "unable to grow the device registry beyond %d devices; resetting it", r.MaxDevices)
		if err := r.freeAll(ctx); err != nil {
			logger.Errorf(ctx, "unable to free the devices: %v", err)
		}
		return ErrOutOfMemory{Reason: fmt.Sprintf("the device registry is limited to %d devices", r.MaxDevices)}
	}
	r.devices = append(r.devices, dev)
	r.numDevices.Store(int64(len(r.devices)))
	return nil
}

// FreeAll releases the registry's reference of every device and empties
// the registry. Streams holding their own references keep their devices
// alive. Calling it on an empty registry is a no-op.
func (r *Registry) FreeAll(ctx context.Context) error {
	return xsync.DoA1R1(ctx, &r.locker, r.freeAll, ctx)
}

func (r *Registry) freeAll(ctx context.Context) (_err error) {
	logger.Tracef(ctx, "freeAll")
	defer func() { logger.Tracef(ctx, "/freeAll: %v", _err) }()
	var errs []error
	for _, dev := range r.devices {
		ctx := belt.WithField(ctx, "device_name", dev.Name)
		logger.Debugf(ctx, "releasing device %s", dev)
		if err := dev.ref.Release(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unable to release device '%s': %w", dev.Name, err))
		}
	}
	r.devices = nil
	r.numDevices.Store(0)
	return errors.Join(errs...)
}
