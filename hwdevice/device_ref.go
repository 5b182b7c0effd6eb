package hwdevice

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaionaro-go/avhwaccel/logger"
	"go.uber.org/atomic"
)

// deviceHandle is the reference-counted owner of a DeviceContext.
type deviceHandle struct {
	context  DeviceContext
	refCount atomic.Int64

	// parent keeps the source device of a derived device alive.
	parent *DeviceRef
}

// DeviceRef is one owned reference on a hardware device context. Every
// holder (the registry, each bound stream) has its own DeviceRef and
// releases it independently; the context is closed when the last
// reference is released.
type DeviceRef struct {
	handle   *deviceHandle
	released atomic.Bool
}

// NewDeviceRef takes the ownership over devCtx.
func NewDeviceRef(devCtx DeviceContext) *DeviceRef {
	return newDeviceRef(devCtx, nil)
}

func newDeviceRef(devCtx DeviceContext, parent *DeviceRef) *DeviceRef {
	h := &deviceHandle{
		context: devCtx,
		parent:  parent,
	}
	h.refCount.Store(1)
	return &DeviceRef{handle: h}
}

// Clone acquires a new reference on the same context. Returns nil if r
// is already released.
func (r *DeviceRef) Clone() *DeviceRef {
	if r == nil || r.released.Load() {
		return nil
	}
	r.handle.refCount.Inc()
	return &DeviceRef{handle: r.handle}
}

// Context returns nil if r is already released.
func (r *DeviceRef) Context() DeviceContext {
	if r == nil || r.released.Load() {
		return nil
	}
	return r.handle.context
}

// RefCount returns the amount of not-released references on the context.
func (r *DeviceRef) RefCount() int64 {
	if r == nil {
		return 0
	}
	return r.handle.refCount.Load()
}

func (r *DeviceRef) IsReleased() bool {
	return r == nil || r.released.Load()
}

// Release drops the reference; releasing twice is a no-op.
func (r *DeviceRef) Release(ctx context.Context) (_err error) {
	if r == nil || r.released.Swap(true) {
		return nil
	}
	if r.handle.refCount.Dec() > 0 {
		return nil
	}
	logger.Tracef(ctx, "closing the device context %p", r.handle.context)
	defer func() { logger.Tracef(ctx, "/closing the device context %p: %v", r.handle.context, _err) }()

	var errs []error
	if err := r.handle.context.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("unable to close the device context: %w", err))
	}
	if err := r.handle.parent.Release(ctx); err != nil {
		errs = append(errs, fmt.Errorf("unable to release the source device: %w", err))
	}
	return errors.Join(errs...)
}
