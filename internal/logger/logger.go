package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ServiceName is attached to every entry created through this package.
const ServiceName = "photo-curator"

// Logger is the process-wide logger. Level and output changes made on it
// apply to every entry derived from this package.
var Logger = New(os.Stdout, os.Getenv("LOG_LEVEL"))

var base = Logger.WithField("service", ServiceName)

// New builds a JSON logger writing to out at the named level.
func New(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(ParseLevel(level))
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return l
}

// ParseLevel maps LOG_LEVEL values to a level. Unknown or empty names mean
// info.
func ParseLevel(name string) logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Configure changes the level of the process-wide logger.
func Configure(level string) {
	Logger.SetLevel(ParseLevel(level))
}

// WithComponent returns the default entry for one part of the service,
// tagged with the service name and the component.
func WithComponent(name string) *logrus.Entry {
	return base.WithField("component", name)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return base.WithFields(fields)
}

func WithError(err error) *logrus.Entry {
	return base.WithError(err)
}

func Info(msg string) {
	base.Info(msg)
}
