//go:build !debug_trace
// +build !debug_trace

// logger_notrace.go compiles trace logging out when the debug_trace build tag is not set.

package logger

import (
	"context"
)

// Tracef is a no-op without the debug_trace build tag.
func Tracef(ctx context.Context, format string, args ...any) {}
