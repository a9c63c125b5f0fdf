package loggers

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	App            = "app"
	Storage        = "storage"
	Executor       = "executor"
	SystemContract = "system_contract"
)

var w = &LoggerWrapper{
	loggers: map[string]*logrus.Entry{
		App:            newWithModule(App),
		Storage:        newWithModule(Storage),
		Executor:       newWithModule(Executor),
		SystemContract: newWithModule(SystemContract),
	},
}

type LoggerWrapper struct {
	loggers map[string]*logrus.Entry
}

func newWithModule(name string) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger.WithField("module", name)
}

// Initialize sets log levels for all modules from config, default info.
func Initialize(levels map[string]string) error {
	for name, entry := range w.loggers {
		levelStr, ok := levels[name]
		if !ok || levelStr == "" {
			levelStr = "info"
		}
		level, err := logrus.ParseLevel(levelStr)
		if err != nil {
			return fmt.Errorf("log initialize: parse level for module %s: %w", name, err)
		}
		entry.Logger.SetLevel(level)
	}
	return nil
}

// Logger returns the logger of the given module, a fresh one if unregistered.
func Logger(name string) logrus.FieldLogger {
	if entry, ok := w.loggers[name]; ok {
		return entry
	}
	return newWithModule(name)
}
