// media_type.go defines the MediaType enum and its methods.

package types

import (
	"fmt"
	"strings"
)

type MediaType int

const (
	// the constants are copied from libav's enum AVMediaType:
	MediaTypeUnknown    = MediaType(-0x1)
	MediaTypeVideo      = MediaType(0x0)
	MediaTypeAudio      = MediaType(0x1)
	MediaTypeData       = MediaType(0x2)
	MediaTypeSubtitle   = MediaType(0x3)
	MediaTypeAttachment = MediaType(0x4)
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeAttachment:
		return "attachment"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeData:
		return "data"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeVideo:
		return "video"
	case MediaTypeUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("MediaType(%d)", int(t))
	}
}

func MediaTypeFromString(s string) MediaType {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, candidate := range []MediaType{
		MediaTypeVideo,
		MediaTypeAudio,
		MediaTypeData,
		MediaTypeSubtitle,
		MediaTypeAttachment,
	} {
		if candidate.String() == s {
			return candidate
		}
	}
	return MediaTypeUnknown
}
