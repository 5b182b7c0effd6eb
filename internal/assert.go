// Package internal contains helpers shared by avhwaccel packages.
package internal

import (
	"context"

	"github.com/xaionaro-go/avhwaccel/logger"
)

// Assert panics (through the logger, so the message is flushed) if
// mustBeTrue is false.
func Assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}

	logger.Panic(ctx, "assertion failed", extraArgs)
}
