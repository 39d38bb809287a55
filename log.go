package mga

import (
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NewLogger returns a timestamped logger writing to w in the configured format, filtered by level.
func NewLogger(w io.Writer, cfg LogConfig) log.Logger {
	var logger log.Logger
	if strings.ToLower(cfg.Format) == "json" {
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	} else {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, levelOption(cfg.Level))
}

// levels maps the configurable levels to their filter. An empty level is info.
var levels = map[string]func() level.Option{
	"":      level.AllowInfo,
	"debug": level.AllowDebug,
	"info":  level.AllowInfo,
	"warn":  level.AllowWarn,
	"error": level.AllowError,
	"none":  level.AllowNone,
}

func levelOption(lvl string) level.Option {
	if opt, ok := levels[strings.ToLower(lvl)]; ok {
		return opt()
	}
	return level.AllowInfo()
}

// LoggerOrNop returns logger, or a logger discarding everything when it is nil.
func LoggerOrNop(logger log.Logger) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return logger
}
