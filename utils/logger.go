package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel, false)
	ErrorLogger = newLogger(os.Stderr, logrus.WarnLevel, false)
)

func newLogger(out io.Writer, level logrus.Level, colors bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   colors,
	})
	l.SetLevel(level)
	return l
}

// InitLogger -> siapkan logger info (stdout) dan error (stderr)
func InitLogger() {
	InitLoggerWithLevel("info", false)
}

// InitLoggerWithLevel is used by main once config is loaded. Unknown levels fall back to info.
func InitLoggerWithLevel(level string, colors bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	InfoLogger = newLogger(os.Stdout, lvl, colors)
	ErrorLogger = newLogger(os.Stderr, logrus.WarnLevel, colors)
	if err != nil {
		ErrorLogger.Warnf("unknown log level %q, using info", level)
	}
}

// SilenceLoggers discards all log output. Tests use it to keep go test output readable.
func SilenceLoggers() {
	InfoLogger.SetOutput(io.Discard)
	ErrorLogger.SetOutput(io.Discard)
}
