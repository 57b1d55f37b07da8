package logger

import (
	"fmt"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
	"github.com/sirupsen/logrus"
)

// ReportFunc delivers one entry to an error tracker
type ReportFunc func(level string, interfaces ...interface{})

// RollbarHook forwards error, fatal and panic entries to Rollbar
type RollbarHook struct {
	report ReportFunc
}

// NewRollbarHook configures the global Rollbar notifier and returns a hook using it
func NewRollbarHook(token, environment, host, version string) *RollbarHook {
	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(version)
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
	return &RollbarHook{report: rollbar.Log}
}

// NewRollbarHookWithReporter builds a hook around a custom delivery function
func NewRollbarHookWithReporter(report ReportFunc) *RollbarHook {
	return &RollbarHook{report: report}
}

// Levels implements logrus.Hook
func (h *RollbarHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire implements logrus.Hook
func (h *RollbarHook) Fire(entry *logrus.Entry) error {
	level := rollbar.ERR
	if entry.Level <= logrus.FatalLevel {
		level = rollbar.CRIT
	}

	extras := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		extras[k] = fmt.Sprint(v)
	}

	if err, ok := entry.Data[logrus.ErrorKey].(error); ok {
		h.report(level, err, extras)
		return nil
	}
	h.report(level, entry.Message, extras)
	return nil
}

// Close waits for queued reports to be sent
func (h *RollbarHook) Close() {
	rollbar.Close()
}
