package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
)

// FilterGraph is a parsed libavfilter graph. Its pads are left open:
// the graph is not connected to buffer sources and sinks.
type FilterGraph struct {
	*astiav.FilterGraph
	Content string

	sinkInputs []types.MediaType
	nodes      []hwdevice.FilterNode
}

var _ hwdevice.FilterGraph = (*FilterGraph)(nil)

// NewFilterGraph parses content into a new graph. sinkInputs are the
// media types the graph output is consumed as.
func NewFilterGraph(
	ctx context.Context,
	content string,
	sinkInputs ...types.MediaType,
) (_ret *FilterGraph, _err error) {
	logger.Tracef(ctx, "NewFilterGraph('%s')", content)
	defer func() { logger.Tracef(ctx, "/NewFilterGraph('%s'): %v", content, _err) }()

	g := &FilterGraph{
		FilterGraph: astiav.AllocFilterGraph(),
		Content:     content,
		sinkInputs:  sinkInputs,
	}
	if g.FilterGraph == nil {
		return nil, fmt.Errorf("unable to allocate a FilterGraph")
	}
	if err := g.FilterGraph.Parse(content, nil, nil); err != nil {
		g.FilterGraph.Free()
		return nil, fmt.Errorf("unable to parse the filter graph '%s': %w", content, err)
	}

	for _, fc := range g.FilterGraph.Filters() {
		g.nodes = append(g.nodes, &FilterNode{FilterContext: fc})
	}
	return g, nil
}

func (g *FilterGraph) SinkInputs() []types.MediaType {
	return g.sinkInputs
}

func (g *FilterGraph) Filters() []hwdevice.FilterNode {
	return g.nodes
}

func (g *FilterGraph) String() string {
	if g == nil || g.FilterGraph == nil {
		return "FilterGraph(<nil>)"
	}
	return fmt.Sprintf("FilterGraph('%s', %d filters)", g.Content, len(g.nodes))
}

func (g *FilterGraph) Close(ctx context.Context) error {
	logger.Debugf(ctx, "freeing %s", g)
	if g.FilterGraph == nil {
		return nil
	}
	g.FilterGraph.Free()
	g.FilterGraph = nil
	g.nodes = nil
	return nil
}

// FilterNode is a filter instance of a FilterGraph.
type FilterNode struct {
	*astiav.FilterContext
}

var _ hwdevice.FilterDeviceNode = (*FilterNode)(nil)

func (n *FilterNode) FilterName() string {
	f := n.FilterContext.Filter()
	if f == nil {
		return ""
	}
	return f.Name()
}

// SetOption is not supported: the options of a parsed filter are set in
// the graph description. Devices are attached with SetDevice.
func (n *FilterNode) SetOption(key, value string) error {
	return ErrNotImplemented{Err: fmt.Errorf("setting option '%s' of filter '%s'", key, n.FilterName())}
}

// SetDevice attaches the device context to the filter, replacing the
// previously attached one.
func (n *FilterNode) SetDevice(
	ctx context.Context,
	name types.HardwareDeviceName,
	device hwdevice.DeviceContext,
) error {
	dev, ok := device.(*DeviceContext)
	if !ok {
		return ErrUnexpectedType{Expected: "*libav.DeviceContext", Actual: device}
	}
	if dev.HardwareDeviceContext == nil {
		return fmt.Errorf("the context of device '%s' is already freed", name)
	}
	n.FilterContext.SetHardwareDeviceContext(dev.HardwareDeviceContext)
	logger.Debugf(ctx, "attached device '%s' to the filter '%s'", name, n.FilterName())
	return nil
}
