// Package logging contains the minimal logger interface used throughout this module, plus
// implementations for discarding, capturing, and forwarding log output.
package logging

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the logging interface used by every component. It is satisfied by *log.Logger.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

// OrNull returns l, or a NullLogger if l is nil.
func OrNull(l Logger) Logger {
	if l == nil {
		return NullLogger()
	}
	return l
}

type prefixedLogger struct {
	target Logger
	prefix string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.target.Printf(p.prefix+message, args...)
}

// WithPrefix returns a Logger that adds a prefix to every message before passing it to l.
func WithPrefix(l Logger, prefix string) Logger {
	return prefixedLogger{target: OrNull(l), prefix: prefix}
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (z zapLogger) Printf(message string, args ...interface{}) {
	z.sugar.Debugf(message, args...)
}

// Zap returns a Logger that writes each message to z at debug level.
func Zap(z *zap.Logger) Logger {
	if z == nil {
		return NullLogger()
	}
	return zapLogger{sugar: z.Sugar()}
}

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger keeps every message in memory so it can be shown later, for instance only
// if a test fails.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}
