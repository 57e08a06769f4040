package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// NewContextWithLogger installs the global console logger and returns a
// context carrying it. Debug mode lowers the level and adds short callers.
// The returned func flushes the async writer.
func NewContextWithLogger(ctx context.Context, debug bool) (context.Context, func()) {
	return newContextWithLogger(ctx, os.Stdout, debug)
}

func newContextWithLogger(ctx context.Context, out io.Writer, debug bool) (context.Context, func()) {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// Non-blocking ring buffer; drops rather than stalls request handlers.
	wr := diode.NewWriter(out, 1000, 5*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "logger dropped %d messages\n", missed)
	})

	output := zerolog.ConsoleWriter{
		Out:        wr,
		NoColor:    true,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
	}

	lc := zerolog.New(output).With().Timestamp()
	if debug {
		lc = lc.Caller()
	}
	logger := lc.Logger()

	log.Logger = logger

	return logger.WithContext(ctx), func() {
		wr.Close()
	}
}

// FromCtx falls back to the global logger when ctx carries none.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}
