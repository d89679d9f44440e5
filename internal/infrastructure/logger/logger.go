package logger

import (
	"io"
	"os"
	"strings"

	"github.com/LavaJover/shvark-ticket-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger from the service config.
func Setup(cfg config.LogConfig) {
	Configure(logrus.StandardLogger(), cfg, os.Stdout)
}

func Configure(l *logrus.Logger, cfg config.LogConfig, out io.Writer) {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetOutput(out)

	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}
}
