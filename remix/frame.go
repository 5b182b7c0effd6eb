// Package remix implements the audio channel-plane remix transform and a
// demux-decode-remix loop driving it.
package remix

import (
	"fmt"

	"github.com/xaionaro-go/avhwaccel/types"
)

type ChannelLayout struct {
	Name     string
	Channels int
}

func (l ChannelLayout) String() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("%d channels", l.Channels)
}

// Properties are the stream-level properties of a frame, carried over
// unchanged by Remix.
type Properties struct {
	PTS      int64
	PktDTS   int64
	Duration int64
	TimeBase types.Rational
	KeyFrame bool
}

// Frame is a decoded audio frame. Planes holds one buffer per plane,
// each of Linesize bytes; for planar sample formats there is a plane per
// channel.
type Frame struct {
	ChannelLayout ChannelLayout
	SampleRate    int
	SampleFormat  types.SampleFormat
	NbSamples     int
	Linesize      int
	Planes        [][]byte
	Properties    Properties

	// ReleaseFunc, if set, is called once by Release to return the
	// storage of Planes to its owner.
	ReleaseFunc func()
}

// Release returns the backing storage of the frame; the frame is left
// without planes. Calling it twice is a no-op.
func (f *Frame) Release() {
	if f == nil {
		return
	}
	releaseFn := f.ReleaseFunc
	f.ReleaseFunc = nil
	f.Planes = nil
	if releaseFn != nil {
		releaseFn()
	}
}

func (f *Frame) String() string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf(
		"Frame(%s, %dHz, %s, %d samples, %d planes, pts:%d)",
		f.ChannelLayout, f.SampleRate, f.SampleFormat, f.NbSamples, len(f.Planes), f.Properties.PTS,
	)
}
