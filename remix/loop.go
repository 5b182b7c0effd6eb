package remix

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avhwaccel/logger"
)

// Packet is a compressed packet read by a Demuxer.
type Packet struct {
	StreamIndex int
	Payload     any

	release func()
}

func NewPacket(streamIndex int, payload any, release func()) *Packet {
	return &Packet{
		StreamIndex: streamIndex,
		Payload:     payload,
		release:     release,
	}
}

// Release returns the resources of the packet; calling it twice is a no-op.
func (p *Packet) Release() {
	if p == nil || p.release == nil {
		return
	}
	releaseFn := p.release
	p.release = nil
	releaseFn()
}

type Demuxer interface {
	// ReadPacket returns io.EOF when the input is over.
	ReadPacket(ctx context.Context) (*Packet, error)
}

type Decoder interface {
	// SendPacket with a nil packet flushes the decoder.
	SendPacket(ctx context.Context, pkt *Packet) Result

	// ReceiveFrame returns a new Frame on every Produced result.
	ReceiveFrame(ctx context.Context) Result
}

// FrameSink consumes remixed frames; the frame is valid only during the
// call.
type FrameSink func(ctx context.Context, frame *Frame) error

type Input struct {
	Demuxer     Demuxer
	Decoder     Decoder
	StreamIndex int
}

type Stats struct {
	PacketsRead   uint64
	PacketsSent   uint64
	FramesRemixed uint64
	BytesRemixed  uint64
}

// ApplyAudioRemix decodes the tracked stream of the input, remixes every
// decoded frame and passes it to sink (if not nil). At the end of the
// input the decoder is flushed and drained. The first failure of
// decoding, remixing or the sink is returned.
func ApplyAudioRemix(
	ctx context.Context,
	input Input,
	remixMap []int,
	sink FrameSink,
) error {
	_, err := defaultRemixer.Apply(ctx, input, remixMap, sink)
	return err
}

// ApplyAudioRemixWithStats is ApplyAudioRemix also returning the counters
// of the loop.
func ApplyAudioRemixWithStats(
	ctx context.Context,
	input Input,
	remixMap []int,
	sink FrameSink,
) (Stats, error) {
	return defaultRemixer.Apply(ctx, input, remixMap, sink)
}

// Apply is ApplyAudioRemixWithStats using r for the frame storage.
func (r *Remixer) Apply(
	ctx context.Context,
	input Input,
	remixMap []int,
	sink FrameSink,
) (_stats Stats, _err error) {
	ctx = belt.WithField(ctx, "stream_index", input.StreamIndex)
	logger.Tracef(ctx, "Apply(%v)", remixMap)
	defer func() { logger.Tracef(ctx, "/Apply(%v): %#+v %v", remixMap, _stats, _err) }()

	l := &loop{
		Remixer:  r,
		Input:    input,
		RemixMap: remixMap,
		Sink:     sink,
	}
	err := l.run(ctx)
	return l.Stats, err
}

type loop struct {
	*Remixer
	Input    Input
	RemixMap []int
	Sink     FrameSink
	Stats    Stats
}

func (l *loop) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pkt, err := l.Input.Demuxer.ReadPacket(ctx)
		if errors.Is(err, io.EOF) {
			logger.Debugf(ctx, "end of input, draining the decoder")
			return l.drain(ctx)
		}
		if err != nil {
			return fmt.Errorf("unable to read a packet: %w", err)
		}
		l.Stats.PacketsRead++

		if err := l.processPacket(ctx, pkt); err != nil {
			return err
		}
	}
}

func (l *loop) processPacket(
	ctx context.Context,
	pkt *Packet,
) error {
	defer pkt.Release()
	if pkt.StreamIndex != l.Input.StreamIndex {
		return nil
	}

	res := l.Input.Decoder.SendPacket(ctx, pkt)
	switch res.Kind {
	case ResultKindFailed:
		logger.Errorf(ctx, "Error sending packet for decoding.")
		return fmt.Errorf("unable to send a packet to the decoder: %w", res.Err)
	case ResultKindEndOfStream:
		return nil
	}
	l.Stats.PacketsSent++
	return l.receiveFrames(ctx)
}

func (l *loop) drain(ctx context.Context) error {
	res := l.Input.Decoder.SendPacket(ctx, nil)
	if res.Kind == ResultKindFailed {
		return fmt.Errorf("unable to flush the decoder: %w", res.Err)
	}
	return l.receiveFrames(ctx)
}

func (l *loop) receiveFrames(ctx context.Context) error {
	for {
		res := l.Input.Decoder.ReceiveFrame(ctx)
		switch res.Kind {
		case ResultKindProduced:
			if err := l.processFrame(ctx, res.Frame); err != nil {
				return err
			}
		case ResultKindNeedMoreInput, ResultKindEndOfStream:
			return nil
		case ResultKindFailed:
			return fmt.Errorf("unable to receive a frame from the decoder: %w", res.Err)
		default:
			return fmt.Errorf("unexpected decoder result: %s", res)
		}
	}
}

func (l *loop) processFrame(
	ctx context.Context,
	frame *Frame,
) error {
	defer frame.Release()
	if err := l.Remix(ctx, frame, l.RemixMap); err != nil {
		logger.Errorf(ctx, "Error remixing audio.")
		return err
	}
	l.Stats.FramesRemixed++
	l.Stats.BytesRemixed += uint64(len(frame.Planes) * frame.Linesize)
	if l.Sink == nil {
		return nil
	}
	if err := l.Sink(ctx, frame); err != nil {
		return fmt.Errorf("the frame sink failed: %w", err)
	}
	return nil
}
