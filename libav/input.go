package libav

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/xaionaro-go/avhwaccel/hwdevice"
	"github.com/xaionaro-go/avhwaccel/logger"
	"github.com/xaionaro-go/avhwaccel/remix"
	"github.com/xaionaro-go/avhwaccel/types"
)

// Input is an opened demuxer.
type Input struct {
	URL           string
	FormatContext *astiav.FormatContext

	closer *astikit.Closer
}

var (
	_ remix.Demuxer          = (*Input)(nil)
	_ hwdevice.DecoderFinder = (*Input)(nil)
)

func OpenInput(
	ctx context.Context,
	url string,
	options types.DictionaryItems,
) (_ret *Input, _err error) {
	logger.Tracef(ctx, "OpenInput(%s)", url)
	defer func() { logger.Tracef(ctx, "/OpenInput(%s): %v", url, _err) }()

	i := &Input{
		URL:    url,
		closer: astikit.NewCloser(),
	}
	defer func() {
		if _err != nil {
			i.closer.Close()
		}
	}()

	i.FormatContext = astiav.AllocFormatContext()
	if i.FormatContext == nil {
		return nil, fmt.Errorf("unable to allocate a format context")
	}
	i.closer.Add(i.FormatContext.Free)

	dict := DictionaryItemsToAstiav(options)
	if dict != nil {
		defer dict.Free()
	}
	if err := i.FormatContext.OpenInput(url, nil, dict); err != nil {
		return nil, fmt.Errorf("unable to open input '%s': %w", url, err)
	}
	i.closer.Add(i.FormatContext.CloseInput)

	if err := i.FormatContext.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("unable to find stream info: %w", err)
	}
	return i, nil
}

func (i *Input) Close(ctx context.Context) error {
	logger.Debugf(ctx, "closing input '%s'", i.URL)
	return i.closer.Close()
}

// Stream returns the first stream of the media type.
func (i *Input) Stream(mediaType types.MediaType) *astiav.Stream {
	for _, s := range i.FormatContext.Streams() {
		if types.MediaType(s.CodecParameters().MediaType()) == mediaType {
			return s
		}
	}
	return nil
}

// FindDecoder implements hwdevice.DecoderFinder: it returns the decoder
// of the first stream of the media type.
func (i *Input) FindDecoder(
	ctx context.Context,
	mediaType types.MediaType,
) hwdevice.Codec {
	s := i.Stream(mediaType)
	if s == nil {
		return nil
	}
	codec := astiav.FindDecoder(s.CodecParameters().CodecID())
	if codec == nil {
		logger.Debugf(ctx, "no decoder for codec %s of stream %d", s.CodecParameters().CodecID(), s.Index())
		return nil
	}
	return &Codec{Codec: codec}
}

// ReadPacket implements remix.Demuxer.
func (i *Input) ReadPacket(ctx context.Context) (*remix.Packet, error) {
	pkt := astiav.AllocPacket()
	if pkt == nil {
		return nil, fmt.Errorf("unable to allocate a packet")
	}
	if err := i.FormatContext.ReadFrame(pkt); err != nil {
		pkt.Free()
		if errors.Is(err, astiav.ErrEof) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("unable to read a packet: %w", err)
	}
	return remix.NewPacket(pkt.StreamIndex(), pkt, pkt.Free), nil
}
