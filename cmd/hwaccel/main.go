package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/asticode/go-astiav"
	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avhwaccel/config"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/libav"
	"github.com/xaionaro-go/avhwaccel/remix"
	"github.com/xaionaro-go/avhwaccel/types"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [options] <URL-from>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to a YAML config file")
	hwDevices := pflag.StringArray("init-hw-device", nil, "a hardware device to initialize: type[=name][:device[,key=value...]] or type[=name]@source")
	hwAccel := pflag.String("hwaccel", "", "hardware acceleration of the video decoder: none, auto or a device type")
	hwAccelDevice := pflag.String("hwaccel-device", "", "the device path to create a device with if none is initialized")
	filter := pflag.String("filter", "", "a video filter graph; hwupload filters get the matching device assigned")
	remixMap := pflag.IntSlice("remix-map", nil, "the audio planes to output, in order (for example: 1,0)")
	videoEncoder := pflag.String("video-encoder", "", "an encoder to bind a hardware frame pool to (for example h264_vaapi)")
	maxDevices := pflag.Int("max-devices", 0, "the maximal amount of initialized devices (0 is unlimited)")
	dumpConfig := pflag.Bool("dump-config", false, "print the resulting config and exit")
	pflag.Parse()

	ctx := context.Background()
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(ctx, *configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if !pflag.CommandLine.Changed("log-level") {
			if level, err := cfg.Level(); err == nil {
				loggerLevel = level
			}
		}
	}
	cfg.LogLevel = loggerLevel.String()
	cfg.Devices = append(cfg.Devices, *hwDevices...)
	if *hwAccel != "" {
		cfg.Input.HWAccel = *hwAccel
	}
	if *hwAccelDevice != "" {
		cfg.Input.HWAccelDevice = *hwAccelDevice
		cfg.Input.HWAccelAutoCreate = true
	}
	if *filter != "" {
		cfg.Input.Filter = *filter
	}
	if len(*remixMap) > 0 {
		cfg.Input.RemixMap = *remixMap
	}
	if *videoEncoder != "" {
		cfg.Output.VideoEncoder = *videoEncoder
	}
	if *maxDevices != 0 {
		cfg.MaxDevices = *maxDevices
	}
	if len(pflag.Args()) == 1 {
		cfg.Input.URL = pflag.Arg(0)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx = logger.CtxWithLogger(ctx, l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *dumpConfig {
		b, err := cfg.Bytes()
		if err != nil {
			l.Fatal(err)
		}
		os.Stdout.Write(b)
		return
	}

	if err := cfg.Validate(); err != nil {
		l.Fatal(err)
	}
	if cfg.Input.URL == "" {
		pflag.Usage()
		os.Exit(1)
	}

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt)
	defer cancelFn()

	libav.BridgeLogs(ctx)

	if err := run(ctx, cfg); err != nil {
		l.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) (_err error) {
	registry := hwdevice.NewRegistry(
		libav.NewRuntime(),
		hwdevice.RegistryOptionMaxDevices{MaxDevices: cfg.MaxDevices},
	)
	defer func() {
		if err := registry.FreeAll(ctx); err != nil {
			logger.Errorf(ctx, "unable to free the hardware devices: %v", err)
		}
	}()

	for _, spec := range cfg.Devices {
		dev, err := registry.InitFromString(ctx, spec)
		if err != nil {
			return fmt.Errorf("unable to initialize the device '%s': %w", spec, err)
		}
		fmt.Printf("device: %s\n", dev)
	}

	logger.Debugf(ctx, "opening '%s' as the input...", cfg.Input.URL)
	input, err := libav.OpenInput(ctx, cfg.Input.URL, cfg.Input.Options)
	if err != nil {
		return err
	}
	defer input.Close(ctx)

	if err := setupVideo(ctx, registry, input, cfg.Input); err != nil {
		return err
	}
	if cfg.Output.VideoEncoder != "" {
		if err := setupEncoder(ctx, registry, input, cfg.Output.VideoEncoder); err != nil {
			return err
		}
	}

	if len(cfg.Input.RemixMap) == 0 {
		return nil
	}
	return remixAudio(ctx, input, cfg.Input.RemixMap)
}

func setupVideo(
	ctx context.Context,
	registry *hwdevice.Registry,
	input *libav.Input,
	cfg config.Input,
) error {
	stream := input.Stream(types.MediaTypeVideo)
	if stream == nil {
		logger.Debugf(ctx, "no video stream in '%s'", input.URL)
		return nil
	}

	hwAccel, deviceType, err := cfg.ParseHWAccel()
	if err != nil {
		return err
	}

	decoder, err := libav.NewDecoder(ctx, stream)
	if err != nil {
		return err
	}
	defer decoder.Close(ctx)

	ist := &hwdevice.InputStream{
		Index:             stream.Index(),
		Decoder:           decoder.DecoderContext,
		HWAccel:           hwAccel,
		HWAccelDeviceType: deviceType,
		HWAccelDevice:     cfg.HWAccelDevice,
		HWAccelAutoCreate: cfg.HWAccelAutoCreate,
	}
	if err := registry.SetupForDecode(ctx, ist); err != nil {
		return err
	}
	defer ist.Release(ctx)
	fmt.Printf("video decoder: %s (%s)\n", ist.State(), ist.Device())

	if err := decoder.Open(ctx); err != nil {
		return err
	}

	if cfg.Filter == "" {
		return nil
	}
	graph, err := libav.NewFilterGraph(ctx, cfg.Filter, types.MediaTypeVideo)
	if err != nil {
		return err
	}
	defer graph.Close(ctx)
	if err := registry.SetupForFilter(ctx, graph, input); err != nil {
		return err
	}
	fmt.Printf("filter: %s\n", graph)
	return nil
}

func setupEncoder(
	ctx context.Context,
	registry *hwdevice.Registry,
	input *libav.Input,
	encoderName string,
) error {
	codec := astiav.FindEncoderByName(encoderName)
	if codec == nil {
		return fmt.Errorf("unable to find encoder '%s'", encoderName)
	}
	codecContext := astiav.AllocCodecContext(codec)
	if codecContext == nil {
		return fmt.Errorf("unable to allocate a codec context for '%s'", encoderName)
	}
	defer codecContext.Free()
	if stream := input.Stream(types.MediaTypeVideo); stream != nil {
		codecContext.SetWidth(stream.CodecParameters().Width())
		codecContext.SetHeight(stream.CodecParameters().Height())
	}

	ost := &hwdevice.OutputStream{
		Encoder: libav.NewEncoderContext(codec, codecContext, astiav.PixelFormatNv12),
	}
	if err := registry.SetupForEncode(ctx, ost); err != nil {
		return err
	}
	defer ost.Release(ctx)
	fmt.Printf("video encoder: %s (%s)\n", ost.State(), ost.Device())
	return nil
}

func remixAudio(
	ctx context.Context,
	input *libav.Input,
	remixMap []int,
) error {
	stream := input.Stream(types.MediaTypeAudio)
	if stream == nil {
		return fmt.Errorf("no audio stream in '%s'", input.URL)
	}

	decoder, err := libav.NewDecoder(ctx, stream)
	if err != nil {
		return err
	}
	defer decoder.Close(ctx)
	if err := decoder.Open(ctx); err != nil {
		return err
	}

	stats, err := remix.ApplyAudioRemixWithStats(
		ctx,
		remix.Input{
			Demuxer:     input,
			Decoder:     decoder,
			StreamIndex: stream.Index(),
		},
		remixMap,
		func(ctx context.Context, frame *remix.Frame) error {
			logger.Tracef(ctx, "remixed frame: %s", frame)
			return nil
		},
	)
	fmt.Printf(
		"packets read: %d, packets sent: %d, frames remixed: %d (%s)\n",
		stats.PacketsRead, stats.PacketsSent, stats.FramesRemixed,
		humanize.IBytes(stats.BytesRemixed),
	)
	return err
}
