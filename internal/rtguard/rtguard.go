// Package rtguard encodes the real-time-safety discipline the original
// engine enforced with an LD_PRELOAD syscall intercept (rtcheck.h /
// rtcheck_preload.c). Go cannot intercept libc calls from within the
// process, so instead an RT-path call site that would otherwise allocate,
// lock, or block calls Violation at the point of the violation. The one
// such call site is MessageQueue's resize-on-overflow.
//
// Violation never allocates or blocks itself: it increments an atomic
// counter and, unless RTCHECK_ABORT is set, returns. The pump thread drains
// the counter and logs through internal/logging; setting RTCHECK_ABORT
// converts the violation into an immediate abort, mirroring the original
// debugging aid named in spec §6.
package rtguard

import (
	"fmt"
	"os"
	"sync/atomic"
)

var violations atomic.Uint64

// Violation records that the calling goroutine just took an RT-unsafe path.
// site is a short stable identifier (e.g. "msgqueue.resize").
func Violation(site string) {
	violations.Add(1)
	if os.Getenv("RTCHECK_ABORT") != "" {
		panic(fmt.Sprintf("rtguard: real-time safety violation at %s", site))
	}
}

// Count returns the number of violations observed since process start.
func Count() uint64 {
	return violations.Load()
}

// Reset clears the violation counter. Intended for tests.
func Reset() {
	violations.Store(0)
}
