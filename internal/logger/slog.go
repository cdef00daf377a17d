package logger

import (
	"io"
	"log/slog"
	"os"
)

// LevelVerbose is used for the chatty platform traces that were only shown
// when verbose logging is on.
const LevelVerbose = slog.LevelDebug - 1

// New returns the bridge logger writing text records to stdout.
func New(verbose bool) *slog.Logger {
	return NewWithWriter(os.Stdout, verbose)
}

func NewWithWriter(w io.Writer, verbose bool) *slog.Logger {
	lv := new(slog.LevelVar)
	SetVerbose(lv, verbose)
	return NewLeveled(w, lv)
}

// NewLeveled lets the caller flip verbosity at runtime through lv.
func NewLeveled(w io.Writer, lv *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lv,
	})).With("component", "cloudbridge")
}

func SetVerbose(lv *slog.LevelVar, verbose bool) {
	if verbose {
		lv.Set(LevelVerbose)
		return
	}
	lv.Set(slog.LevelInfo)
}

// Discard drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
