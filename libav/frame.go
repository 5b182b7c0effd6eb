package libav

import (
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/remix"
	"github.com/xaionaro-go/avhwaccel/types"
)

const samplesAlign = 1

// FrameFromAstiav copies a decoded audio frame into a remix frame; the
// frame does not carry its time base, so it is passed by the caller.
func FrameFromAstiav(
	f *astiav.Frame,
	timeBase astiav.Rational,
) (*remix.Frame, error) {
	sf := types.SampleFormat(f.SampleFormat().Name())
	channels := f.ChannelLayout().Channels()
	planes := 1
	if sf.IsPlanar() {
		planes = channels
	}

	result := &remix.Frame{
		ChannelLayout: remix.ChannelLayout{
			Name:     f.ChannelLayout().String(),
			Channels: channels,
		},
		SampleRate:   f.SampleRate(),
		SampleFormat: sf,
		NbSamples:    f.NbSamples(),
		Properties: remix.Properties{
			PTS:      f.Pts(),
			PktDTS:   f.PktDts(),
			Duration: f.Duration(),
			TimeBase: types.Rational{Num: timeBase.Num(), Den: timeBase.Den()},
			KeyFrame: f.KeyFrame(),
		},
	}
	if planes <= 0 || f.NbSamples() <= 0 {
		return result, nil
	}

	bufSize, err := f.SamplesBufferSize(samplesAlign)
	if err != nil {
		return nil, fmt.Errorf("unable to get sample buffer size: %w", err)
	}
	buf := make([]byte, bufSize)
	if _, err := f.SamplesCopyToBuffer(buf, samplesAlign); err != nil {
		return nil, fmt.Errorf("unable to copy samples to buffer: %w", err)
	}

	result.Linesize = bufSize / planes
	for idx := 0; idx < planes; idx++ {
		result.Planes = append(result.Planes, buf[idx*result.Linesize:(idx+1)*result.Linesize])
	}
	return result, nil
}
