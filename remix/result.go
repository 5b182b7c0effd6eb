package remix

import (
	"fmt"
)

type ResultKind int

const (
	ResultKindUndefined = ResultKind(iota)
	ResultKindProduced
	ResultKindNeedMoreInput
	ResultKindEndOfStream
	ResultKindFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultKindUndefined:
		return "undefined"
	case ResultKindProduced:
		return "produced"
	case ResultKindNeedMoreInput:
		return "need_more_input"
	case ResultKindEndOfStream:
		return "end_of_stream"
	case ResultKindFailed:
		return "failed"
	}
	return fmt.Sprintf("unknown_result_kind_%d", int(k))
}

// Result is the outcome of a decoder call. Frame is set only for
// ResultKindProduced of ReceiveFrame, Err only for ResultKindFailed.
type Result struct {
	Kind  ResultKind
	Frame *Frame
	Err   error
}

func Produced(frame *Frame) Result {
	return Result{Kind: ResultKindProduced, Frame: frame}
}

func NeedMoreInput() Result {
	return Result{Kind: ResultKindNeedMoreInput}
}

func EndOfStream() Result {
	return Result{Kind: ResultKindEndOfStream}
}

func Failed(err error) Result {
	return Result{Kind: ResultKindFailed, Err: err}
}

func (r Result) String() string {
	switch r.Kind {
	case ResultKindProduced:
		return fmt.Sprintf("produced(%s)", r.Frame)
	case ResultKindFailed:
		return fmt.Sprintf("failed(%v)", r.Err)
	}
	return r.Kind.String()
}
