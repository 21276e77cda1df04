package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"transfer/internal/config"
)

// Logger wraps logrus so packages share one configured instance.
type Logger struct {
	*logrus.Logger
}

// New builds a Logger from configuration. Unknown levels fall back to info,
// and a log file that cannot be opened falls back to stdout.
func New(cfg *config.LoggerConfig) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = io.MultiWriter(os.Stdout, file)
		} else {
			log.WithError(err).WithField("file", cfg.File).Warn("failed to open log file, using stdout")
		}
	}
	log.SetOutput(out)

	return &Logger{Logger: log}
}

// Discard returns a logger that drops everything. Used by tests and optional collaborators.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{Logger: log}
}
