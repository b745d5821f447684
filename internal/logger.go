package internal

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger can be modified by external for testing
var Logger = logrus.New()

// SetLogLevel changes log level of Logger. Unknown level is ignored.
func SetLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "TRACE":
		Logger.SetLevel(logrus.TraceLevel)
	case "DEBUG":
		Logger.SetLevel(logrus.DebugLevel)
	case "INFO":
		Logger.SetLevel(logrus.InfoLevel)
	case "WARN", "WARNING":
		Logger.SetLevel(logrus.WarnLevel)
	case "ERROR":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		if level != "" {
			Logger.WithField("level", level).Warn("Unsupported log level, ignored")
		}
	}
}

// SetupLambdaLogger configures Logger for CloudWatch Logs (JSON lines).
func SetupLambdaLogger(level string) {
	Logger.SetFormatter(&logrus.JSONFormatter{})
	Logger.SetLevel(logrus.InfoLevel)
	SetLogLevel(level)
}
