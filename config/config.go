// Package config defines the configuration file of the hwaccel tool.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/avhwaccel/filtergraph"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/types"
	"gopkg.in/yaml.v3"
)

const (
	HWAccelNameNone = "none"
	HWAccelNameAuto = "auto"
)

type Config struct {
	LogLevel   string `yaml:"log_level,omitempty"`
	MaxDevices int    `yaml:"max_devices,omitempty"`

	// Devices are device specifications ("vaapi=va:/dev/dri/renderD128"),
	// initialized in order.
	Devices []string `yaml:"devices,omitempty"`

	Input  Input  `yaml:"input"`
	Output Output `yaml:"output,omitempty"`
}

type Input struct {
	URL     string                `yaml:"url"`
	Options types.DictionaryItems `yaml:"options,omitempty"`

	// HWAccel is "none", "auto" or a device type name.
	HWAccel           string `yaml:"hwaccel"`
	HWAccelDevice     string `yaml:"hwaccel_device,omitempty"`
	HWAccelAutoCreate bool   `yaml:"hwaccel_auto_create,omitempty"`

	// Filter is a video filter graph in the libav syntax.
	Filter string `yaml:"filter,omitempty"`

	// RemixMap selects the output audio planes; empty disables the remix.
	RemixMap []int `yaml:"remix_map,omitempty"`
}

type Output struct {
	// VideoEncoder is the name of an encoder to bind a hardware frame
	// pool to (for example "h264_vaapi").
	VideoEncoder string `yaml:"video_encoder,omitempty"`
}

func Default() Config {
	return Config{
		LogLevel: logger.LevelWarning.String(),
		Input: Input{
			HWAccel: HWAccelNameNone,
		},
	}
}

// Load reads the YAML file on top of Default().
func Load(
	ctx context.Context,
	path string,
) (_ret Config, _err error) {
	logger.Tracef(ctx, "Load(%s)", path)
	defer func() { logger.Tracef(ctx, "/Load(%s): %v", path, _err) }()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read the config file '%s': %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("unable to parse the config file '%s': %w", path, err)
	}
	logger.Tracef(ctx, "config: %s", spew.Sdump(cfg))
	return cfg, nil
}

func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Bytes() ([]byte, error) {
	return yaml.Marshal(cfg)
}

func (cfg Config) Level() (logger.Level, error) {
	level := logger.LevelWarning
	if cfg.LogLevel == "" {
		return level, nil
	}
	if err := level.Set(cfg.LogLevel); err != nil {
		return logger.LevelUndefined, fmt.Errorf("invalid log level '%s': %w", cfg.LogLevel, err)
	}
	return level, nil
}

// ParseHWAccel resolves the HWAccel string.
func (in Input) ParseHWAccel() (hwdevice.HWAccel, types.HardwareDeviceType, error) {
	switch in.HWAccel {
	case "", HWAccelNameNone:
		return hwdevice.HWAccelNone, types.HardwareDeviceTypeNone, nil
	case HWAccelNameAuto:
		return hwdevice.HWAccelAuto, types.HardwareDeviceTypeNone, nil
	}
	t := types.HardwareDeviceTypeFromString(in.HWAccel)
	if t == types.HardwareDeviceTypeNone {
		return hwdevice.HWAccelNone, types.HardwareDeviceTypeNone, fmt.Errorf("unknown hwaccel '%s'", in.HWAccel)
	}
	return hwdevice.HWAccelGeneric, t, nil
}

// Validate checks the syntax of every field; it does not create devices.
func (cfg Config) Validate() error {
	var errs []error
	if _, err := cfg.Level(); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxDevices < 0 {
		errs = append(errs, fmt.Errorf("max_devices must not be negative, got %d", cfg.MaxDevices))
	}
	for idx, spec := range cfg.Devices {
		if _, err := hwdevice.ParseSpec(spec); err != nil {
			errs = append(errs, fmt.Errorf("devices[%d]: %w", idx, err))
		}
	}
	if _, _, err := cfg.Input.ParseHWAccel(); err != nil {
		errs = append(errs, err)
	}
	if _, err := filtergraph.Parse(cfg.Input.Filter); err != nil {
		errs = append(errs, fmt.Errorf("filter: %w", err))
	}
	for idx, planeIdx := range cfg.Input.RemixMap {
		if planeIdx < 0 {
			errs = append(errs, fmt.Errorf("remix_map[%d]: negative plane index %d", idx, planeIdx))
		}
	}
	return errors.Join(errs...)
}
