package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// SlogAPI implements API using the log/slog package.
//
// The zero value logs through slog.Default().
type SlogAPI struct {
	logger *slog.Logger
}

// NewSlogAPI creates a SlogAPI that writes to the given logger.
func NewSlogAPI(logger *slog.Logger) SlogAPI {
	return SlogAPI{logger: logger}
}

func (s SlogAPI) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (SlogAPI) formatParams(out *[]any, params []any) {
	for i, p := range params {
		*out = append(
			*out,
			fmt.Sprintf("params.%d", i),
			p,
		)
	}
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.log().Error("broken component", remainingPairs...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.log().Warn("warning", remainingPairs...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	remainingPairs := []any{}
	s.formatParams(&remainingPairs, params)
	s.log().Debug(message, remainingPairs...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.log().Info("count", "id", id, "n", count)
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// InitSlog sets the default slog logger to write to stdout and, when logsDir is
// non-empty, to <logsDir>/<name>.log as well.
//
// The returned closer releases the log file.
func InitSlog(logsDir, name string, verbose bool) (io.Closer, error) {
	out, closer, err := openLogOutput(logsDir, name, os.Stdout)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level(verbose),
	})))
	return closer, nil
}

// NewFileLogger creates a logger that writes to stdout and <logsDir>/<name>.log,
// this is the logging handle each exchange source owns.
func NewFileLogger(logsDir, name string, verbose bool) (*slog.Logger, io.Closer, error) {
	out, closer, err := openLogOutput(logsDir, name, os.Stdout)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level(verbose),
	})).With("source", name)
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openLogOutput(logsDir, name string, console io.Writer) (io.Writer, io.Closer, error) {
	if logsDir == "" {
		return console, nopCloser{}, nil
	}
	err := os.MkdirAll(logsDir, 0755)
	if err != nil {
		return nil, nil, fmt.Errorf("create logs dir: %w", err)
	}
	f, err := os.OpenFile(
		filepath.Join(logsDir, fmt.Sprintf("%s.log", name)),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return io.MultiWriter(console, f), f, nil
}
