package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// logrusHook forwards logrus entries to a Logger.
type logrusHook struct {
	target *Logger
}

// BridgeLogrus routes everything logged through l into target, so libraries
// that log with logrus are captured and formatted like the rest of the
// program. l's own output is discarded.
func BridgeLogrus(l *logrus.Logger, target *Logger) {
	l.SetOutput(io.Discard)
	l.AddHook(&logrusHook{target: target})
}

// Levels implements logrus.Hook.
func (h *logrusHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *logrusHook) Fire(entry *logrus.Entry) error {
	h.target.Log(fromLogrusLevel(entry.Level), entry.Message)
	return nil
}

// fromLogrusLevel maps logrus levels onto ours; panic and fatal become error.
func fromLogrusLevel(l logrus.Level) Level {
	switch l {
	case logrus.TraceLevel:
		return LevelTrace
	case logrus.DebugLevel:
		return LevelDebug
	case logrus.InfoLevel:
		return LevelInfo
	case logrus.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}
