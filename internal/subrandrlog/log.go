// SPDX-License-Identifier: Unlicense OR MIT

// Package subrandrlog is the internal leveled-logging facility every
// component logs through. It has exactly one sink: the process-wide
// callback installed by subrandr.SetLogCallback. Without a registered
// callback, every call is a no-op.
package subrandrlog

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Level mirrors §6's TRACE..ERROR severity scale.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Func is the shape of the callback installed via SetCallback.
type Func func(level Level, message string)

var (
	mu       sync.RWMutex
	callback Func
	minLevel atomic.Int32
)

// SetCallback installs cb as the process-wide log sink. A nil cb
// disables logging.
func SetCallback(cb Func) {
	mu.Lock()
	defer mu.Unlock()
	callback = cb
}

// SetMinLevel suppresses messages below level.
func SetMinLevel(level Level) {
	minLevel.Store(int32(level))
}

// Logger is a cheap, stateless handle components embed to log with a
// consistent component tag.
type Logger struct {
	component string
}

// New returns a Logger that prefixes its messages with component, e.g.
// "selector", "inline", "raster".
func New(component string) Logger {
	return Logger{component: component}
}

func (l Logger) log(level Level, format string, args ...any) {
	if Level(minLevel.Load()) > level {
		return
	}
	mu.RLock()
	cb := callback
	mu.RUnlock()
	if cb == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		msg = l.component + ": " + msg
	}
	cb(level, msg)
}

func (l Logger) Tracef(format string, args ...any) { l.log(Trace, format, args...) }
func (l Logger) Debugf(format string, args ...any) { l.log(Debug, format, args...) }
func (l Logger) Infof(format string, args ...any)  { l.log(Info, format, args...) }
func (l Logger) Warnf(format string, args ...any)  { l.log(Warn, format, args...) }
func (l Logger) Errorf(format string, args ...any) { l.log(Error, format, args...) }
