package remix

import (
	"context"

	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/pool"
)

// Allocator provides the storage of remixed planes.
type Allocator interface {
	Get(size int) ([]byte, error)
	Put(bufs ...[]byte)
}

var _ Allocator = (*pool.Bytes)(nil)

type Remixer struct {
	Allocator Allocator
}

// NewRemixer returns a Remixer allocating from alloc; a nil alloc means
// an unbounded byte pool.
func NewRemixer(alloc Allocator) *Remixer {
	if alloc == nil {
		alloc = pool.NewBytes(0)
	}
	return &Remixer{
		Allocator: alloc,
	}
}

// Remix replaces the planes of frame with copies of the planes selected
// by remixMap: output plane i is a copy of input plane remixMap[i]. The
// format, the sample rate, the sample count and the properties are kept.
// The old storage of frame is released. On error frame is untouched.
func (r *Remixer) Remix(
	ctx context.Context,
	frame *Frame,
	remixMap []int,
) (_err error) {
	logger.Tracef(ctx, "Remix(%s, %v)", frame, remixMap)
	defer func() { logger.Tracef(ctx, "/Remix(%s, %v): %v", frame, remixMap, _err) }()

	for pos, idx := range remixMap {
		if idx < 0 || idx >= len(frame.Planes) {
			return ErrInvalidRemixMap{Position: pos, Index: idx, NumPlanes: len(frame.Planes)}
		}
	}

	planes := make([][]byte, 0, len(remixMap))
	for range remixMap {
		buf, err := r.Allocator.Get(frame.Linesize)
		if err != nil {
			r.Allocator.Put(planes...)
			logger.Errorf(ctx, "Could not allocate remix frame buffer.")
			return ErrOutOfMemory{Err: err}
		}
		planes = append(planes, buf)
	}
	for i, idx := range remixMap {
		copy(planes[i], frame.Planes[idx])
	}

	alloc := r.Allocator
	remixed := Frame{
		ChannelLayout: frame.ChannelLayout,
		SampleRate:    frame.SampleRate,
		SampleFormat:  frame.SampleFormat,
		NbSamples:     frame.NbSamples,
		Linesize:      frame.Linesize,
		Planes:        planes,
		Properties:    frame.Properties,
		ReleaseFunc: func() {
			alloc.Put(planes...)
		},
	}
	frame.Release()
	*frame = remixed
	return nil
}

var defaultRemixer = NewRemixer(nil)

// Remix remixes the frame using the storage of the default Remixer.
func Remix(
	ctx context.Context,
	frame *Frame,
	remixMap []int,
) error {
	return defaultRemixer.Remix(ctx, frame, remixMap)
}
