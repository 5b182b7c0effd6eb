package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
)

const sampleConfig = `
log_level: debug
max_devices: 4
devices:
  - vaapi=va:/dev/dri/renderD128,driver=iHD
  - opencl=ocl@va
input:
  url: /tmp/input.mkv
  options:
    - key: fflags
      value: nobuffer
  hwaccel: vaapi
  hwaccel_device: /dev/dri/renderD129
  hwaccel_auto_create: true
  filter: format=nv12,hwupload
  remix_map: [1, 0]
`

func TestLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hwaccel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(ctx, path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 4, cfg.MaxDevices)
	require.Equal(t, []string{"vaapi=va:/dev/dri/renderD128,driver=iHD", "opencl=ocl@va"}, cfg.Devices)
	require.Equal(t, "/tmp/input.mkv", cfg.Input.URL)
	require.Equal(t, types.DictionaryItems{{Key: "fflags", Value: "nobuffer"}}, cfg.Input.Options)
	require.True(t, cfg.Input.HWAccelAutoCreate)
	require.Equal(t, []int{1, 0}, cfg.Input.RemixMap)

	level, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, logger.LevelDebug, level)

	hwAccel, deviceType, err := cfg.Input.ParseHWAccel()
	require.NoError(t, err)
	require.Equal(t, hwdevice.HWAccelGeneric, hwAccel)
	require.Equal(t, types.HardwareDeviceTypeVAAPI, deviceType)

	_, err = Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("input:\n  url: x\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, HWAccelNameNone, cfg.Input.HWAccel)

	level, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, logger.LevelWarning, level)

	b, err := cfg.Bytes()
	require.NoError(t, err)
	again, err := Parse(b)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestParseHWAccel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hwAccel    string
		wantAccel  hwdevice.HWAccel
		wantType   types.HardwareDeviceType
		wantErrors bool
	}{
		{hwAccel: "", wantAccel: hwdevice.HWAccelNone},
		{hwAccel: "none", wantAccel: hwdevice.HWAccelNone},
		{hwAccel: "auto", wantAccel: hwdevice.HWAccelAuto},
		{hwAccel: "cuda", wantAccel: hwdevice.HWAccelGeneric, wantType: types.HardwareDeviceTypeCUDA},
		{hwAccel: "nvidia", wantErrors: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.hwAccel, func(t *testing.T) {
			t.Parallel()
			hwAccel, deviceType, err := Input{HWAccel: tt.hwAccel}.ParseHWAccel()
			if tt.wantErrors {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantAccel, hwAccel)
			require.Equal(t, tt.wantType, deviceType)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "log level", modify: func(cfg *Config) { cfg.LogLevel = "loud" }},
		{name: "max devices", modify: func(cfg *Config) { cfg.MaxDevices = -1 }},
		{name: "device", modify: func(cfg *Config) { cfg.Devices = []string{"vaapi", "nvidia"} }},
		{name: "hwaccel", modify: func(cfg *Config) { cfg.Input.HWAccel = "nvidia" }},
		{name: "filter", modify: func(cfg *Config) { cfg.Input.Filter = "[in]scale" }},
		{name: "remix map", modify: func(cfg *Config) { cfg.Input.RemixMap = []int{0, -1} }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			require.NoError(t, cfg.Validate())
			tt.modify(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
