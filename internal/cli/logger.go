package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	if strings.EqualFold(format, "json") {
		zl = zerolog.New(w)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    os.Getenv("NO_COLOR") != "",
			TimeFormat: time.TimeOnly,
		})
	}
	return zl.Level(lvl).With().Timestamp().Logger()
}
