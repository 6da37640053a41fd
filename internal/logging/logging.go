// Package logging provides the three colored, timestamped log sinks the
// indexer core expects from its logger collaborator: Info, Warning, and
// Severe.
package logging

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is the contract the indexer core depends on. The core never
// constructs or configures a Logger; it only calls these three methods.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Severe(msg string)
}

// colorLogger implements Logger on top of logrus, coloring each message
// with an ANSI color chosen by its severity.
type colorLogger struct {
	entry *logrus.Logger

	info    *color.Color
	warning *color.Color
	severe  *color.Color
}

// New returns a Logger that writes timestamped, colored lines to w.
func New(w io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true, // coloring is applied to the message itself, not the level
		DisableQuote:    true, // quoting would escape the message's ANSI codes
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	return &colorLogger{
		entry:   l,
		info:    color.New(color.FgCyan),
		warning: color.New(color.FgYellow),
		severe:  color.New(color.FgRed, color.Bold),
	}
}

// Default returns a Logger writing to standard output.
func Default() Logger {
	return New(os.Stdout)
}

func (l *colorLogger) Info(msg string) {
	l.entry.Info(l.info.Sprint(msg))
}

func (l *colorLogger) Warning(msg string) {
	l.entry.Warn(l.warning.Sprint(msg))
}

func (l *colorLogger) Severe(msg string) {
	l.entry.Error(l.severe.Sprint(msg))
}
