// Package libav implements the hardware device and remix collaborators on
// top of go-astiav (FFmpeg).
package libav

import (
	"context"
	"strings"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avhwaccel/logger"
)

// logLevelTrace is AV_LOG_TRACE, which the binding does not export.
const logLevelTrace = astiav.LogLevelDebug + 8

func LogLevelToAstiav(level logger.Level) astiav.LogLevel {
	switch level {
	case logger.LevelTrace:
		return logLevelTrace
	case logger.LevelDebug:
		return astiav.LogLevelDebug
	case logger.LevelInfo:
		return astiav.LogLevelInfo
	case logger.LevelWarning:
		return astiav.LogLevelWarning
	case logger.LevelError:
		return astiav.LogLevelError
	case logger.LevelPanic:
		return astiav.LogLevelPanic
	case logger.LevelFatal:
		return astiav.LogLevelFatal
	}
	return astiav.LogLevelQuiet
}

func LogLevelFromAstiav(level astiav.LogLevel) logger.Level {
	switch {
	case level >= logLevelTrace:
		return logger.LevelTrace
	case level >= astiav.LogLevelVerbose:
		return logger.LevelDebug
	case level >= astiav.LogLevelInfo:
		return logger.LevelInfo
	case level >= astiav.LogLevelWarning:
		return logger.LevelWarning
	case level >= astiav.LogLevelError:
		return logger.LevelError
	case level >= astiav.LogLevelFatal:
		return logger.LevelFatal
	case level >= astiav.LogLevelPanic:
		return logger.LevelPanic
	}
	return logger.LevelUndefined
}

// BridgeLogs redirects the libav log into the logger of ctx.
func BridgeLogs(ctx context.Context) {
	l := logger.FromCtx(ctx)
	astiav.SetLogLevel(LogLevelToAstiav(l.Level()))
	astiav.SetLogCallback(func(c astiav.Classer, level astiav.LogLevel, fmt, msg string) {
		var cs string
		if c != nil {
			if cl := c.Class(); cl != nil {
				cs = " - class: " + cl.String()
			}
		}
		logger.Logf(ctx,
			LogLevelFromAstiav(level),
			"%s%s",
			strings.TrimSpace(msg), cs,
		)
	})
}
