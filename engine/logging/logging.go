// package logging is the process-wide structured logger. Every package logs through these helpers so the
// level and output are configured in one place.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(func() {
		l := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "oxy-gl",
			// skip the helper frame so the caller of Info etc. is reported
			CallerOffset: 1,
		})
		l.SetLevel(log.InfoLevel)
		singleton = &logger{l}
	})
	return singleton
}

// SetLevel parses and applies a level name (debug, info, warn, error, fatal).
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - error: error if the name is not a level
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

// SetOutput redirects the logger.
func SetOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

func Debug(msg string, args ...any) {
	getLogger().Debugf(msg, args...)
}

func Info(msg string, args ...any) {
	getLogger().Infof(msg, args...)
}

func Warn(msg string, args ...any) {
	getLogger().Warnf(msg, args...)
}

func Error(msg string, args ...any) {
	getLogger().Errorf(msg, args...)
}

// Fatal logs at fatal level and exits the process with status 1.
func Fatal(msg string, args ...any) {
	getLogger().Fatalf(msg, args...)
}
