// SPDX-License-Identifier: Unlicense OR MIT

package subrandr

import "github.com/subrandr/subrandr/internal/subrandrlog"

// LogLevel mirrors §6's TRACE(0)..ERROR(4) severity scale. Callers
// should treat any value above Error as Error, per §6's "consumers
// should treat unknown higher values as ERROR."
type LogLevel int

const (
	LogTrace LogLevel = iota
	LogDebug
	LogInfo
	LogWarn
	LogError
)

// LogFunc receives every message logged by the library at or above
// the installed minimum level.
type LogFunc func(level LogLevel, message string)

// SetLogCallback installs the process-wide log sink (§6: "before any
// renderer is created"). Passing nil disables logging.
func SetLogCallback(cb LogFunc) {
	if cb == nil {
		subrandrlog.SetCallback(nil)
		return
	}
	subrandrlog.SetCallback(func(level subrandrlog.Level, message string) {
		cb(LogLevel(level), message)
	})
}
