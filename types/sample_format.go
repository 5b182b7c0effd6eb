package types

import (
	"strings"
)

// SampleFormat is an audio sample format identified by its libav name.
type SampleFormat string

const (
	SampleFormatNone SampleFormat = ""
	SampleFormatU8   SampleFormat = "u8"
	SampleFormatS16  SampleFormat = "s16"
	SampleFormatS32  SampleFormat = "s32"
	SampleFormatS64  SampleFormat = "s64"
	SampleFormatFlt  SampleFormat = "flt"
	SampleFormatDbl  SampleFormat = "dbl"
	SampleFormatU8P  SampleFormat = "u8p"
	SampleFormatS16P SampleFormat = "s16p"
	SampleFormatS32P SampleFormat = "s32p"
	SampleFormatS64P SampleFormat = "s64p"
	SampleFormatFltp SampleFormat = "fltp"
	SampleFormatDblp SampleFormat = "dblp"
)

func (f SampleFormat) String() string {
	if f == SampleFormatNone {
		return "none"
	}
	return string(f)
}

// IsPlanar reports whether every channel is stored in its own plane.
func (f SampleFormat) IsPlanar() bool {
	switch f {
	case SampleFormatU8P, SampleFormatS16P, SampleFormatS32P,
		SampleFormatS64P, SampleFormatFltp, SampleFormatDblp:
		return true
	}
	return false
}

// BytesPerSample returns zero for unknown formats.
func (f SampleFormat) BytesPerSample() int {
	switch strings.TrimSuffix(string(f), "p") {
	case "u8":
		return 1
	case "s16":
		return 2
	case "s32", "flt":
		return 4
	case "s64", "dbl":
		return 8
	}
	return 0
}
