package hwdevice

import (
	"context"
	"fmt"
	"sync"

	"github.com/xaionaro-go/avhwaccel/types"
)

type fakeDeviceContext struct {
	Type        types.HardwareDeviceType
	Path        string
	Options     types.DictionaryItems
	DerivedFrom *fakeDeviceContext
	CloseCount  int
}

func (c *fakeDeviceContext) Close(context.Context) error {
	c.CloseCount++
	return nil
}

func (c *fakeDeviceContext) IsClosed() bool {
	return c.CloseCount > 0
}

type fakeFramePool struct {
	Device      *fakeDeviceContext
	PixelFormat types.PixelFormat
	CloseCount  int
}

func (p *fakeFramePool) Close(context.Context) error {
	p.CloseCount++
	return nil
}

type fakeRuntime struct {
	Locker    sync.Mutex
	Created   []*fakeDeviceContext
	CreateErr error
	DeriveErr error

	NegotiateErr   error
	NegotiateNoop  bool
	NegotiatedWith []types.PixelFormat
	Pools          []*fakeFramePool
}

var _ Runtime = (*fakeRuntime)(nil)

func (rt *fakeRuntime) CreateDevice(
	_ context.Context,
	deviceType types.HardwareDeviceType,
	devicePath string,
	options types.DictionaryItems,
) (DeviceContext, error) {
	rt.Locker.Lock()
	defer rt.Locker.Unlock()
	if rt.CreateErr != nil {
		return nil, rt.CreateErr
	}
	c := &fakeDeviceContext{Type: deviceType, Path: devicePath, Options: options}
	rt.Created = append(rt.Created, c)
	return c, nil
}

func (rt *fakeRuntime) CreateDerivedDevice(
	_ context.Context,
	deviceType types.HardwareDeviceType,
	source DeviceContext,
) (DeviceContext, error) {
	rt.Locker.Lock()
	defer rt.Locker.Unlock()
	if rt.DeriveErr != nil {
		return nil, rt.DeriveErr
	}
	src, ok := source.(*fakeDeviceContext)
	if !ok {
		return nil, fmt.Errorf("unexpected source %T", source)
	}
	if src.IsClosed() {
		return nil, fmt.Errorf("the source is closed")
	}
	c := &fakeDeviceContext{Type: deviceType, DerivedFrom: src}
	rt.Created = append(rt.Created, c)
	return c, nil
}

func (rt *fakeRuntime) NegotiateFramePool(
	_ context.Context,
	_ EncoderContext,
	device DeviceContext,
	pixelFormat types.PixelFormat,
) (FramePool, error) {
	rt.Locker.Lock()
	defer rt.Locker.Unlock()
	rt.NegotiatedWith = append(rt.NegotiatedWith, pixelFormat)
	if rt.NegotiateErr != nil {
		return nil, rt.NegotiateErr
	}
	if rt.NegotiateNoop {
		return nil, nil
	}
	p := &fakeFramePool{Device: device.(*fakeDeviceContext), PixelFormat: pixelFormat}
	rt.Pools = append(rt.Pools, p)
	return p, nil
}

type fakeCodec struct {
	CodecName string
	Configs   []types.HardwareConfig
}

func (c *fakeCodec) Name() string                            { return c.CodecName }
func (c *fakeCodec) HardwareConfigs() []types.HardwareConfig { return c.Configs }

type fakeDecoder struct {
	codec     *fakeCodec
	SetErr    error
	DeviceCtx DeviceContext
}

func (d *fakeDecoder) Codec() Codec { return d.codec }

func (d *fakeDecoder) SetHardwareDeviceContext(_ context.Context, device DeviceContext) error {
	if d.SetErr != nil {
		return d.SetErr
	}
	d.DeviceCtx = device
	return nil
}

type fakeEncoder struct {
	codec  *fakeCodec
	SetErr error
	Pool   FramePool
}

func (e *fakeEncoder) Codec() Codec { return e.codec }

func (e *fakeEncoder) SetHardwareFramesContext(_ context.Context, pool FramePool) error {
	if e.SetErr != nil {
		return e.SetErr
	}
	e.Pool = pool
	return nil
}

type fakeFilterNode struct {
	Name    string
	Options map[string]string
	SetErr  error
}

func (n *fakeFilterNode) FilterName() string { return n.Name }

func (n *fakeFilterNode) SetOption(key, value string) error {
	if n.SetErr != nil {
		return n.SetErr
	}
	if n.Options == nil {
		n.Options = map[string]string{}
	}
	n.Options[key] = value
	return nil
}

type fakeDeviceFilterNode struct {
	fakeFilterNode
	DeviceName types.HardwareDeviceName
	Device     DeviceContext
}

func (n *fakeDeviceFilterNode) SetDevice(_ context.Context, name types.HardwareDeviceName, device DeviceContext) error {
	if n.SetErr != nil {
		return n.SetErr
	}
	n.DeviceName = name
	n.Device = device
	return nil
}

type fakeNodeGraph struct {
	Sink  []types.MediaType
	Nodes []FilterNode
}

func (g *fakeNodeGraph) SinkInputs() []types.MediaType { return g.Sink }

func (g *fakeNodeGraph) Filters() []FilterNode { return g.Nodes }

type fakeFilterGraph struct {
	Sink  []types.MediaType
	Nodes []*fakeFilterNode
}

func (g *fakeFilterGraph) SinkInputs() []types.MediaType { return g.Sink }

func (g *fakeFilterGraph) Filters() []FilterNode {
	result := make([]FilterNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		result = append(result, n)
	}
	return result
}

type fakeDecoderFinder map[types.MediaType]*fakeCodec

func (f fakeDecoderFinder) FindDecoder(_ context.Context, mediaType types.MediaType) Codec {
	c, ok := f[mediaType]
	if !ok {
		return nil
	}
	return c
}

func deviceCfg(t types.HardwareDeviceType, pf types.PixelFormat) types.HardwareConfig {
	return types.HardwareConfig{DeviceType: t, PixelFormat: pf, Methods: types.HardwareConfigMethodHWDeviceCtx}
}

func framesCfg(t types.HardwareDeviceType, pf types.PixelFormat) types.HardwareConfig {
	return types.HardwareConfig{DeviceType: t, PixelFormat: pf, Methods: types.HardwareConfigMethodHWFramesCtx}
}

func bothCfg(t types.HardwareDeviceType, pf types.PixelFormat) types.HardwareConfig {
	return types.HardwareConfig{DeviceType: t, PixelFormat: pf, Methods: types.HardwareConfigMethodHWDeviceCtx | types.HardwareConfigMethodHWFramesCtx}
}
