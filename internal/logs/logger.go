package logs

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	})
	return l
}

// Init sets the minimum level; unknown levels keep INFO.
func Init(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
}

// Logger exposes the shared instance for components that take a logrus logger.
func Logger() *logrus.Logger {
	return logger
}

// LogJSON writes one structured entry. level is "DEBUG", "INFO", "WARN", "ERROR" or "FATAL".
func LogJSON(level, message string, fields map[string]interface{}) {
	entry := logger.WithFields(logrus.Fields(fields))
	switch strings.ToUpper(level) {
	case "DEBUG":
		entry.Debug(message)
	case "WARN":
		entry.Warn(message)
	case "ERROR":
		entry.Error(message)
	case "FATAL":
		entry.Fatal(message)
	default:
		entry.Info(message)
	}
}
