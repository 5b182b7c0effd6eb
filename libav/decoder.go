package libav

import (
	"context"
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/remix"
)

// Decoder is an opened decoder producing remix frames.
type Decoder struct {
	*DecoderContext
}

var _ remix.Decoder = (*Decoder)(nil)

// NewDecoder allocates a decoder context for the stream; the hardware
// device may be bound (see hwdevice.Registry.SetupForDecode) to the
// returned DecoderContext before Open.
func NewDecoder(
	ctx context.Context,
	stream *astiav.Stream,
) (*Decoder, error) {
	codec := astiav.FindDecoder(stream.CodecParameters().CodecID())
	if codec == nil {
		return nil, fmt.Errorf("unable to find a decoder for %s", stream.CodecParameters().CodecID())
	}
	codecContext := astiav.AllocCodecContext(codec)
	if codecContext == nil {
		return nil, fmt.Errorf("unable to allocate a codec context")
	}
	if err := stream.CodecParameters().ToCodecContext(codecContext); err != nil {
		codecContext.Free()
		return nil, fmt.Errorf("codecParameters.ToCodecContext(...) returned error: %w", err)
	}
	codecContext.SetTimeBase(stream.TimeBase())
	return &Decoder{
		DecoderContext: NewDecoderContext(codec, codecContext),
	}, nil
}

func (d *Decoder) Open(ctx context.Context) error {
	logger.Debugf(ctx, "opening decoder '%s'", d.codec.Name())
	if err := d.CodecContext.Open(d.codec.Codec, nil); err != nil {
		return fmt.Errorf("unable to open the decoder: %w", err)
	}
	return nil
}

func (d *Decoder) Close(ctx context.Context) error {
	d.CodecContext.Free()
	return nil
}

func resultFromError(err error) remix.Result {
	switch {
	case err == nil:
		return remix.Produced(nil)
	case errors.Is(err, astiav.ErrEagain):
		return remix.NeedMoreInput()
	case errors.Is(err, astiav.ErrEof):
		return remix.EndOfStream()
	}
	return remix.Failed(err)
}

// SendPacket implements remix.Decoder.
func (d *Decoder) SendPacket(
	ctx context.Context,
	pkt *remix.Packet,
) remix.Result {
	if pkt == nil {
		// an empty packet is the flush request
		flushPkt := astiav.AllocPacket()
		defer flushPkt.Free()
		return resultFromError(d.CodecContext.SendPacket(flushPkt))
	}
	p, ok := pkt.Payload.(*astiav.Packet)
	if !ok {
		return remix.Failed(ErrUnexpectedType{Expected: "*astiav.Packet", Actual: pkt.Payload})
	}
	return resultFromError(d.CodecContext.SendPacket(p))
}

// ReceiveFrame implements remix.Decoder.
func (d *Decoder) ReceiveFrame(ctx context.Context) remix.Result {
	f := astiav.AllocFrame()
	if f == nil {
		return remix.Failed(fmt.Errorf("unable to allocate a frame"))
	}
	defer f.Free()

	res := resultFromError(d.CodecContext.ReceiveFrame(f))
	if res.Kind != remix.ResultKindProduced {
		return res
	}
	frame, err := FrameFromAstiav(f, d.CodecContext.TimeBase())
	if err != nil {
		return remix.Failed(err)
	}
	return remix.Produced(frame)
}
