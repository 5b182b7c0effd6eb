package hwdevice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avhwaccel/types"
)

func TestDeviceAfterFreeAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rt := &fakeRuntime{}
	r := NewRegistry(rt)
	dev, err := r.InitFromString(ctx, "vaapi=gpu:/dev/dri/renderD128")
	require.NoError(t, err)
	require.Same(t, rt.Created[0], dev.Context())

	held := dev.Clone()
	require.EqualValues(t, 2, dev.RefCount())
	require.NoError(t, held.Release(ctx))
	require.False(t, rt.Created[0].IsClosed(), "releasing a clone must not close the registered device")
	require.Same(t, dev, r.GetByName(ctx, "gpu"))

	require.NoError(t, r.FreeAll(ctx))
	require.True(t, rt.Created[0].IsClosed())
	require.Nil(t, dev.Context())
	require.Nil(t, dev.Clone())

	var nilDev *Device
	require.Nil(t, nilDev.Context())
	require.Nil(t, nilDev.Clone())
	require.Zero(t, nilDev.RefCount())
}

// releasedDevice registers a device whose context got released behind the
// registry's back.
func releasedDevice(t *testing.T, spec string) (*Registry, *fakeRuntime, *Device) {
	ctx := context.Background()
	rt := &fakeRuntime{}
	r := NewRegistry(rt)
	dev, err := r.InitFromString(ctx, spec)
	require.NoError(t, err)
	require.NoError(t, dev.ref.Release(ctx))
	require.True(t, rt.Created[0].IsClosed())
	return r, rt, dev
}

func TestSetupWithReleasedDevice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("decode", func(t *testing.T) {
		t.Parallel()
		r, _, _ := releasedDevice(t, "vaapi=gpu")
		dec := h264Decoder(deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI))
		ist := &InputStream{Decoder: dec, HWAccel: HWAccelAuto}

		err := r.SetupForDecode(ctx, ist)
		var errReleased ErrDeviceReleased
		require.True(t, errors.As(err, &errReleased), err)
		require.Equal(t, types.HardwareDeviceName("gpu"), errReleased.Name)
		require.Nil(t, dec.DeviceCtx)
		require.Equal(t, StreamStateUnconfigured, ist.State())
		require.Nil(t, ist.DeviceRef())
	})

	t.Run("encode", func(t *testing.T) {
		t.Parallel()
		r, rt, _ := releasedDevice(t, "vaapi=gpu")
		enc := &fakeEncoder{codec: &fakeCodec{
			CodecName: "hevc_vaapi",
			Configs:   []types.HardwareConfig{bothCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)},
		}}
		ost := &OutputStream{Encoder: enc}

		err := r.SetupForEncode(ctx, ost)
		var errReleased ErrDeviceReleased
		require.True(t, errors.As(err, &errReleased), err)
		require.Empty(t, rt.NegotiatedWith)
		require.Nil(t, enc.Pool)
		require.Equal(t, StreamStateUnconfigured, ost.State())
	})

	t.Run("derive", func(t *testing.T) {
		t.Parallel()
		r, rt, _ := releasedDevice(t, "vaapi=gpu")
		_, err := r.InitFromString(ctx, "opencl@gpu")
		var errReleased ErrDeviceReleased
		require.True(t, errors.As(err, &errReleased), err)
		require.Len(t, rt.Created, 1)
		require.Equal(t, 1, r.Len(ctx))
	})
}
