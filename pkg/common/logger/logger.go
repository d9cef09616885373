package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

var (
	discard     *logrus.Logger
	discardOnce sync.Once
)

func Init() {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	Log.SetLevel(logLevel)
}

// Get returns the process logger, or a discarding logger when Init has not run
// (library code called from tests or embedding programs).
func Get() *logrus.Logger {
	if Log != nil {
		return Log
	}
	discardOnce.Do(func() {
		discard = logrus.New()
		discard.SetOutput(io.Discard)
	})
	return discard
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Get().WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}
