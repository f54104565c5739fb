package log

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tpalab/regeval/pkg/errors"
)

// Output formats accepted by SetupLogger.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// SetupLogger installs the default slog logger.
//
// "json" emits Cloud Logging style JSON lines and attaches cockroachdb stack
// traces to error attributes; "console" emits colored human readable lines.
func SetupLogger(loglevel, format string, w io.Writer) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case FormatJSON:
		ops := slog.HandlerOptions{
			AddSource: true,
			Level:     level,
			// Replace attributes to convert to CloudLogging format.
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				switch attr.Key {
				case slog.LevelKey:
					attr = slog.Attr{Key: "severity", Value: attr.Value}
				case slog.MessageKey:
					attr = slog.Attr{Key: "message", Value: attr.Value}
				case slog.SourceKey:
					attr = slog.Attr{Key: "logging.googleapis.com/sourceLocation", Value: attr.Value}
				}
				return attr
			},
		}
		handler = slog.NewJSONHandler(w, &ops)
	case FormatConsole, "":
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	default:
		return errors.NewValidationError("log.format", "must be one of [json, console]", format)
	}

	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
	return nil
}

// ToLogLevel parses one of debug, info, warn, error.
func ToLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.NewValidationError("log.level", "must be one of [debug, info, warn, error]", level)
	}
}

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// ErrorCode maps err to one of the Error* codes, or "" when none applies.
func ErrorCode(err error) string {
	var (
		notFitted   *errors.NotFittedError
		dimension   *errors.DimensionError
		convergence *errors.ConvergenceWarning
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notFitted):
		return ErrorNotFitted
	case errors.As(err, &dimension):
		return ErrorDimensionMismatch
	case errors.As(err, &convergence):
		return ErrorConvergence
	case errors.Is(err, errors.ErrEmptyData):
		return ErrorEmptyData
	}
	return ""
}
