package common

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type LogLevel int32

const (
	DEBUG_INFO_DETAIL       LogLevel = 1
	DEBUG_INFO                       = 2
	CACHE_OUT_IN_INFO                = 4
	LOCK_WAIT_INFO                   = 8
	COMMIT_ABORT_HANDLE_INFO         = 16
	DEBUGGING                        = 32
	INFO                             = 64
	WARN                             = 128
	ERROR                            = 256
	FATAL                            = 512
)

// kinds of ShPrintf output that are written, changed by SetLogLevel
var activeLogKindSetting atomic.Int32

func init() {
	activeLogKindSetting.Store(int32(INFO | WARN | ERROR | FATAL))
}

func ActiveLogKindSetting() LogLevel {
	return LogLevel(activeLogKindSetting.Load())
}

func IsLogKindActive(logLevel LogLevel) bool {
	return logLevel&ActiveLogKindSetting() != 0
}

var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLogLevel maps a config level name onto both the logrus level and the
// active log kinds.
func SetLogLevel(level string) {
	var kinds LogLevel
	switch strings.ToLower(level) {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
		kinds = DEBUG_INFO | CACHE_OUT_IN_INFO | LOCK_WAIT_INFO | COMMIT_ABORT_HANDLE_INFO | DEBUGGING | INFO | WARN | ERROR | FATAL
	case "warn", "warning":
		Logger.SetLevel(logrus.WarnLevel)
		kinds = WARN | ERROR | FATAL
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
		kinds = ERROR | FATAL
	default:
		Logger.SetLevel(logrus.InfoLevel)
		kinds = INFO | WARN | ERROR | FATAL
	}
	activeLogKindSetting.Store(int32(kinds))
}

func ShPrintf(logLevel LogLevel, fmtStl string, a ...interface{}) {
	if !IsLogKindActive(logLevel) {
		return
	}
	msg := strings.TrimRight(fmtStl, "\n")
	switch {
	case logLevel >= ERROR:
		Logger.Errorf(msg, a...)
	case logLevel >= WARN:
		Logger.Warnf(msg, a...)
	case logLevel >= INFO:
		Logger.Infof(msg, a...)
	default:
		Logger.Debugf(msg, a...)
	}
}
