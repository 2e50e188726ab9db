// Package logs builds the structured logger shared by the command line
// tools. Output fans out to a terminal handler, an optional JSON file and,
// when reachable, the systemd journal.
package logs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

var ErrUnknownLevel = errors.New("logs: unknown level")

var level = new(slog.LevelVar)

// SetLevel changes the level of every logger created by New.
func SetLevel(name string) error {
	l, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level.Set(l)
	return nil
}

func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

type Options struct {
	Level    string
	Writer   io.Writer
	JSONFile string
	Journal  bool
}

// New returns a logger and a close func releasing the JSON file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	if opts.Level != "" {
		if err := SetLevel(opts.Level); err != nil {
			return nil, nil, err
		}
	}
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	closer := func() error { return nil }
	terminalHandler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	handlers := []slog.Handler{terminalHandler}

	if opts.JSONFile != "" {
		f, err := os.OpenFile(opts.JSONFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closer = f.Close
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	if opts.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = terminalHandler.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// Discard is used where no logger was supplied.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	str = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
	return str
}
