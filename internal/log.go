package internal

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/wot-oss/fwreg/internal/config"
)

type DefaultLogHandler struct {
	*slog.TextHandler
}

type DiscardLogHandler struct {
	*slog.TextHandler
}

func newDefaultLogHandler(opts *slog.HandlerOptions) slog.Handler {
	return &DefaultLogHandler{
		TextHandler: slog.NewTextHandler(os.Stderr, opts),
	}
}

func newDiscardLogHandler(opts *slog.HandlerOptions) slog.Handler {
	return &DiscardLogHandler{
		TextHandler: slog.NewTextHandler(io.Discard, opts),
	}
}

// InitLogging sets the default slog logger according to the configured log level.
func InitLogging() {
	InitLoggingWithLevel(viper.GetString(config.KeyLogLevel))
}

// InitLoggingWithLevel sets the default slog logger to the given level.
// An empty level or "off" disables logging altogether, unknown levels fall back to INFO.
func InitLoggingWithLevel(logLevel string) {
	logLevel = strings.TrimSpace(logLevel)

	var level slog.Level
	err := level.UnmarshalText([]byte(logLevel))
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if logLevel == "" || strings.EqualFold(logLevel, config.LogLevelOff) {
		handler = newDiscardLogHandler(opts)
	} else {
		handler = newDefaultLogHandler(opts)
	}

	slog.SetDefault(slog.New(handler))
}
