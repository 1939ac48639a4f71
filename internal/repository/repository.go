package repository

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by writes that matched no row. Reads return nil, nil.
var ErrNotFound = errors.New("record not found")

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())
	return logger
}
