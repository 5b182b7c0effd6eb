package hwdevice

import (
	"context"
	"errors"
	"fmt"

	"github.com/asticode/go-astikit"
	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
	"github.com/xaionaro-go/xsync"
)

// InitFromString creates a device from a specification (see SpecRequest)
// and registers it. On failure the registry is left unchanged.
func (r *Registry) InitFromString(
	ctx context.Context,
	spec string,
) (*Device, error) {
	return xsync.DoA2R2(ctx, &r.locker, r.initFromString, ctx, spec)
}

func (r *Registry) initFromString(
	ctx context.Context,
	spec string,
) (_ret *Device, _err error) {
	ctx = belt.WithField(ctx, "spec", spec)
	logger.Tracef(ctx, "initFromString")
	defer func() { logger.Tracef(ctx, "/initFromString: %v %v", _ret, _err) }()

	defer func() {
		var errInvalid ErrInvalidSpec
		switch {
		case _err == nil:
		case errors.As(_err, &errInvalid):
			logger.Errorf(ctx, "Invalid device specification \"%s\": %s", spec, errInvalid.Reason)
		default:
			logger.Errorf(ctx, "Device creation failed: %v", _err)
		}
	}()

	req, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	logger.Tracef(ctx, "parsed the device specification: %s", spew.Sdump(req))

	name := req.Name
	if req.HasName {
		if r.getByName(name) != nil {
			return nil, ErrInvalidSpec{Spec: spec, Reason: reasonNamedDeviceExists}
		}
	} else {
		name, err = r.defaultName(req.Type)
		if err != nil {
			return nil, err
		}
	}
	ctx = belt.WithField(ctx, "device_name", name)

	var ref *DeviceRef
	if req.IsDerived() {
		src := r.getByName(req.Source)
		if src == nil {
			return nil, ErrInvalidSpec{Spec: spec, Reason: reasonInvalidSourceName}
		}
		ref, err = r.createDerived(ctx, req.Type, src)
	} else {
		ref, err = r.create(ctx, req.Type, req.DevicePath, req.Options)
	}
	if err != nil {
		return nil, err
	}

	return r.register(ctx, &Device{
		Name:        name,
		Type:        req.Type,
		DerivedFrom: req.Source,
		ref:         ref,
	})
}

// InitFromType creates a device of the type with a default name, the
// given device path (may be empty) and no options, and registers it.
func (r *Registry) InitFromType(
	ctx context.Context,
	deviceType types.HardwareDeviceType,
	devicePath string,
) (*Device, error) {
	return xsync.DoA3R2(ctx, &r.locker, r.initFromType, ctx, deviceType, devicePath)
}

func (r *Registry) initFromType(
	ctx context.Context,
	deviceType types.HardwareDeviceType,
	devicePath string,
) (_ret *Device, _err error) {
	logger.Tracef(ctx, "initFromType(%s, '%s')", deviceType, devicePath)
	defer func() { logger.Tracef(ctx, "/initFromType(%s, '%s'): %v %v", deviceType, devicePath, _ret, _err) }()

	name, err := r.defaultName(deviceType)
	if err != nil {
		return nil, err
	}
	ctx = belt.WithField(ctx, "device_name", name)

	ref, err := r.create(ctx, deviceType, devicePath, nil)
	if err != nil {
		logger.Errorf(ctx, "Device creation failed: %v", err)
		return nil, err
	}

	return r.register(ctx, &Device{
		Name: name,
		Type: deviceType,
		ref:  ref,
	})
}

func (r *Registry) create(
	ctx context.Context,
	deviceType types.HardwareDeviceType,
	devicePath string,
	options types.DictionaryItems,
) (*DeviceRef, error) {
	logger.Debugf(ctx, "creating a %s device (path: '%s', options: '%s')", deviceType, devicePath, options)
	devCtx, err := r.Runtime.CreateDevice(ctx, deviceType, devicePath, options)
	if err != nil {
		return nil, ErrRuntime{Op: "create the device context", Type: deviceType, Err: err}
	}
	if devCtx == nil {
		return nil, ErrRuntime{Op: "create the device context", Type: deviceType, Err: fmt.Errorf("the runtime returned no context")}
	}
	return NewDeviceRef(devCtx), nil
}

func (r *Registry) createDerived(
	ctx context.Context,
	deviceType types.HardwareDeviceType,
	src *Device,
) (*DeviceRef, error) {
	logger.Debugf(ctx, "deriving a %s device from %s", deviceType, src)
	srcRef := src.Clone()
	if srcRef == nil {
		return nil, ErrDeviceReleased{Name: src.Name}
	}
	devCtx, err := r.Runtime.CreateDerivedDevice(ctx, deviceType, srcRef.Context())
	if err == nil && devCtx == nil {
		err = fmt.Errorf("the runtime returned no context")
	}
	if err != nil {
		if releaseErr := srcRef.Release(ctx); releaseErr != nil {
			logger.Errorf(ctx, "unable to release the source device %s: %v", src, releaseErr)
		}
		return nil, ErrRuntime{Op: "derive the device context", Type: deviceType, Err: err}
	}
	return newDeviceRef(devCtx, srcRef), nil
}

// register adds dev to the registry; if that fails, dev.ref is released.
func (r *Registry) register(
	ctx context.Context,
	dev *Device,
) (_ret *Device, _err error) {
	closer := astikit.NewCloser()
	defer func() {
		if _err != nil {
			if err := closer.Close(); err != nil {
				logger.Errorf(ctx, "unable to clean up after a failed registration of %s: %v", dev, err)
			}
		}
	}()
	closer.Add(func() {
		if err := dev.ref.Release(ctx); err != nil {
			logger.Errorf(ctx, "unable to release the device context of %s: %v", dev, err)
		}
	})

	if err := r.add(ctx, dev); err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "registered device %s", dev)
	return dev, nil
}
