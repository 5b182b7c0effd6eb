package hwdevice

import (
	"context"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/xsync"
)

const (
	FilterNameHWUpload     = "hwupload"
	FilterOptionNameDevice = "device"
)

// SetupForFilter points every "hwupload" filter of the graph to the
// device matching the decoder of the graph sink input. A graph without
// sink inputs, without a decoder, or without a matching device is left
// untouched. The first failure to set an option aborts the setup.
func (r *Registry) SetupForFilter(
	ctx context.Context,
	graph FilterGraph,
	decoders DecoderFinder,
) error {
	return xsync.DoA3R1(ctx, &r.locker, r.setupForFilter, ctx, graph, decoders)
}

func (r *Registry) setupForFilter(
	ctx context.Context,
	graph FilterGraph,
	decoders DecoderFinder,
) (_err error) {
	logger.Tracef(ctx, "setupForFilter")
	defer func() { logger.Tracef(ctx, "/setupForFilter: %v", _err) }()

	sinkInputs := graph.SinkInputs()
	if len(sinkInputs) == 0 {
		return nil
	}

	codec := decoders.FindDecoder(ctx, sinkInputs[0])
	if codec == nil {
		logger.Debugf(ctx, "no decoder for the %s sink input", sinkInputs[0])
		return nil
	}

	dev := r.matchByCodec(ctx, codec)
	if dev == nil {
		logger.Debugf(ctx, "no device matches the decoder '%s'", codec.Name())
		return nil
	}
	ctx = belt.WithField(ctx, "device_name", dev.Name)

	for _, node := range graph.Filters() {
		if node.FilterName() != FilterNameHWUpload {
			continue
		}
		if err := setFilterDevice(ctx, node, dev); err != nil {
			return ErrOptionApply{Filter: node.FilterName(), Option: FilterOptionNameDevice, Err: err}
		}
		logger.Debugf(ctx, "set %s=%s to %s", FilterOptionNameDevice, dev.Name, node.FilterName())
	}
	return nil
}

func setFilterDevice(ctx context.Context, node FilterNode, dev *Device) error {
	deviceNode, ok := node.(FilterDeviceNode)
	if !ok {
		return node.SetOption(FilterOptionNameDevice, dev.Name.String())
	}
	devCtx := dev.Context()
	if devCtx == nil {
		return ErrDeviceReleased{Name: dev.Name}
	}
	return deviceNode.SetDevice(ctx, dev.Name, devCtx)
}
