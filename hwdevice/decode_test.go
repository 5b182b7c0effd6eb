package hwdevice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avhwaccel/types"
)

type decodeParams struct {
	HWAccel           HWAccel
	HWAccelDeviceType types.HardwareDeviceType
	HWAccelDevice     string
	HWAccelAutoCreate bool
}

func h264Decoder(configs ...types.HardwareConfig) *fakeDecoder {
	return &fakeDecoder{codec: &fakeCodec{CodecName: "h264", Configs: configs}}
}

func TestSetupForDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		specs      []string
		stream     decodeParams
		configs    []types.HardwareConfig
		wantState  StreamState
		wantDevice types.HardwareDeviceName
		wantReason string
	}{
		{
			name:      "hwaccel none",
			specs:     []string{"vaapi"},
			stream:    decodeParams{HWAccel: HWAccelNone},
			configs:   []types.HardwareConfig{deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)},
			wantState: StreamStateDisabled,
		},
		{
			name:       "auto picks the first registered",
			specs:      []string{"vaapi=va", "cuda=nv"},
			stream:     decodeParams{HWAccel: HWAccelAuto},
			configs:    []types.HardwareConfig{deviceCfg(types.HardwareDeviceTypeDRM, types.PixelFormatDRMPrime), deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)},
			wantState:  StreamStateBound,
			wantDevice: "va",
		},
		{
			name:       "generic picks the requested type",
			specs:      []string{"vaapi=va", "cuda=nv"},
			stream:     decodeParams{HWAccel: HWAccelGeneric, HWAccelDeviceType: types.HardwareDeviceTypeCUDA},
			configs:    []types.HardwareConfig{deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI), deviceCfg(types.HardwareDeviceTypeCUDA, types.PixelFormatCUDA)},
			wantState:  StreamStateBound,
			wantDevice: "nv",
		},
		{
			name:       "decoder without hardware configs",
			specs:      []string{"vaapi"},
			stream:     decodeParams{HWAccel: HWAccelAuto},
			wantState:  StreamStateUnconfigured,
			wantReason: reasonDecoderNoDeviceType,
		},
		{
			name:       "generic type not supported by the decoder",
			specs:      []string{"cuda"},
			stream:     decodeParams{HWAccel: HWAccelGeneric, HWAccelDeviceType: types.HardwareDeviceTypeCUDA},
			configs:    []types.HardwareConfig{deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)},
			wantState:  StreamStateUnconfigured,
			wantReason: reasonDecoderNoDeviceType,
		},
		{
			name:       "supported but not registered",
			specs:      []string{"cuda"},
			stream:     decodeParams{HWAccel: HWAccelAuto},
			configs:    []types.HardwareConfig{deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)},
			wantState:  StreamStateUnconfigured,
			wantReason: reasonNoSuitableDevice,
		},
		{
			name:       "ambiguous registration",
			specs:      []string{"vaapi", "vaapi"},
			stream:     decodeParams{HWAccel: HWAccelGeneric, HWAccelDeviceType: types.HardwareDeviceTypeVAAPI},
			configs:    []types.HardwareConfig{deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)},
			wantState:  StreamStateUnconfigured,
			wantReason: reasonNoSuitableDevice,
		},
		{
			name:       "generic with auto-creation",
			stream:     decodeParams{HWAccel: HWAccelGeneric, HWAccelDeviceType: types.HardwareDeviceTypeVAAPI, HWAccelDevice: "/dev/dri/renderD129", HWAccelAutoCreate: true},
			configs:    []types.HardwareConfig{deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)},
			wantState:  StreamStateBound,
			wantDevice: "vaapi0",
		},
		{
			name:       "auto does not auto-create",
			stream:     decodeParams{HWAccel: HWAccelAuto, HWAccelAutoCreate: true},
			configs:    []types.HardwareConfig{deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)},
			wantState:  StreamStateUnconfigured,
			wantReason: reasonNoSuitableDevice,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			rt := &fakeRuntime{}
			r := NewRegistry(rt)
			for _, spec := range tt.specs {
				_, err := r.InitFromString(ctx, spec)
				require.NoError(t, err)
			}

			dec := h264Decoder(tt.configs...)
			ist := &InputStream{
				Decoder:           dec,
				HWAccel:           tt.stream.HWAccel,
				HWAccelDeviceType: tt.stream.HWAccelDeviceType,
				HWAccelDevice:     tt.stream.HWAccelDevice,
				HWAccelAutoCreate: tt.stream.HWAccelAutoCreate,
			}
			err := r.SetupForDecode(ctx, ist)
			require.Equal(t, tt.wantState, ist.State())

			if tt.wantReason != "" {
				var errNoDev ErrNoSuitableDevice
				require.True(t, errors.As(err, &errNoDev), err)
				require.Equal(t, tt.wantReason, errNoDev.Reason)
				require.Equal(t, "h264", errNoDev.Codec)
				require.Nil(t, dec.DeviceCtx)
				return
			}
			require.NoError(t, err)

			if tt.wantDevice == "" {
				require.Nil(t, ist.Device())
				require.Nil(t, dec.DeviceCtx)
				return
			}
			dev := r.GetByName(ctx, tt.wantDevice)
			require.NotNil(t, dev)
			require.Same(t, dev, ist.Device())
			require.Same(t, dev.Context(), dec.DeviceCtx)
			require.EqualValues(t, 2, dev.RefCount())
			if tt.stream.HWAccelAutoCreate {
				require.Equal(t, tt.stream.HWAccelDevice, rt.Created[len(rt.Created)-1].Path)
			}
		})
	}
}

func TestSetupForDecodeAutoCreateFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rt := &fakeRuntime{CreateErr: errors.New("no such device")}
	r := NewRegistry(rt)

	ist := &InputStream{
		Decoder:           h264Decoder(deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)),
		HWAccel:           HWAccelGeneric,
		HWAccelDeviceType: types.HardwareDeviceTypeVAAPI,
		HWAccelAutoCreate: true,
	}
	err := r.SetupForDecode(ctx, ist)
	var errNoDev ErrNoSuitableDevice
	require.True(t, errors.As(err, &errNoDev), err)
	require.Equal(t, reasonNoSuitableDevice, errNoDev.Reason)
	require.Zero(t, r.Len(ctx))
}

func TestSetupForDecodeAutoCreateOutOfMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry(&fakeRuntime{}, RegistryOptionMaxDevices{MaxDevices: 1})
	_, err := r.InitFromString(ctx, "cuda")
	require.NoError(t, err)

	ist := &InputStream{
		Decoder:           h264Decoder(deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)),
		HWAccel:           HWAccelGeneric,
		HWAccelDeviceType: types.HardwareDeviceTypeVAAPI,
		HWAccelAutoCreate: true,
	}
	err = r.SetupForDecode(ctx, ist)
	var errOOM ErrOutOfMemory
	require.True(t, errors.As(err, &errOOM), err)
	require.Equal(t, StreamStateUnconfigured, ist.State())
}

func TestSetupForDecodeBindFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry(&fakeRuntime{})
	dev, err := r.InitFromString(ctx, "vaapi")
	require.NoError(t, err)

	dec := h264Decoder(deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI))
	dec.SetErr = errors.New("the codec is already opened")
	ist := &InputStream{Decoder: dec, HWAccel: HWAccelAuto}

	err = r.SetupForDecode(ctx, ist)
	require.ErrorIs(t, err, dec.SetErr)
	require.Equal(t, StreamStateUnconfigured, ist.State())
	require.EqualValues(t, 1, dev.RefCount())
}

func TestInputStreamRelease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rt := &fakeRuntime{}
	r := NewRegistry(rt)
	_, err := r.InitFromString(ctx, "vaapi")
	require.NoError(t, err)

	ist := &InputStream{
		Decoder: h264Decoder(deviceCfg(types.HardwareDeviceTypeVAAPI, types.PixelFormatVAAPI)),
		HWAccel: HWAccelAuto,
	}
	require.NoError(t, r.SetupForDecode(ctx, ist))
	require.Equal(t, StreamStateBound, ist.State())

	var errState ErrStreamState
	require.True(t, errors.As(r.SetupForDecode(ctx, ist), &errState))

	require.NoError(t, r.FreeAll(ctx))
	require.False(t, rt.Created[0].IsClosed(), "the stream still holds the device")
	require.NotNil(t, ist.DeviceRef().Context())

	require.NoError(t, ist.Release(ctx))
	require.Equal(t, StreamStateReleased, ist.State())
	require.True(t, rt.Created[0].IsClosed())
	require.NoError(t, ist.Release(ctx))
	require.Equal(t, 1, rt.Created[0].CloseCount)
}
