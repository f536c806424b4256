// Package trace implements the process-wide diagnostic level described in
// SPEC_FULL.md section 3.1: "a process-wide atomic u8 consulted only by
// logging macros." corefont has no internal threads (see spec.md section
// 5), but the level itself is read from arbitrary goroutines a host
// application may run concurrently with library calls, so it is still an
// atomic.
package trace

import (
	"fmt"
	"log"
	"sync/atomic"
)

// Level selects how verbose component tracing is. Higher is more verbose.
type Level uint32

const (
	Off Level = iota
	Error
	Warn
	Info
	Debug
)

var level atomic.Uint32

// SetLevel sets the global trace level.
func SetLevel(l Level) { level.Store(uint32(l)) }

// GetLevel returns the global trace level.
func GetLevel() Level { return Level(level.Load()) }

// Tracef logs a message tagged with component if the global level is at
// least l. Intended for the few internal call sites that need visibility
// into cache eviction and driver probing, mirroring FreeType's FT_TRACE
// macros which compile to no-ops below a component's configured level.
func Tracef(component string, l Level, format string, args ...any) {
	if GetLevel() < l {
		return
	}
	log.Printf("corefont[%s]: %s", component, fmt.Sprintf(format, args...))
}
