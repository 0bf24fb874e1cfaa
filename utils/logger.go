package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLogger menyiapkan dua logger global: info ke stdout, error ke stderr.
// LOG_FORMAT=json mengaktifkan formatter JSON untuk deployment.
func InitLogger() {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	var formatter logrus.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	if os.Getenv("LOG_FORMAT") == "json" {
		formatter = &logrus.JSONFormatter{}
	}

	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(formatter)
	InfoLogger.SetLevel(logrus.InfoLevel)

	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(formatter)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}
