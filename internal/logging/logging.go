package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to out at the given level
// (debug, info, warn or error). An empty level means info.
func New(out io.Writer, level string) (zerolog.Logger, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger(), nil
}

func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
