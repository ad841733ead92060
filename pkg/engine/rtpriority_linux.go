//go:build linux

package engine

import "golang.org/x/sys/unix"

// SetRealtimePriority raises the calling OS thread's scheduling priority
// before Loop is entered (spec §4.9: "Sets itself to an elevated
// scheduling priority before entering the loop"). Callers should pin
// Loop's goroutine to its own OS thread with runtime.LockOSThread before
// calling this, since Setpriority is a per-thread (not per-process)
// property on Linux.
//
// Errors are returned rather than panicked on: an unprivileged process
// (no CAP_SYS_NICE) commonly fails this call, and the engine still runs
// correctly, just without the elevated priority's jitter guarantees.
func SetRealtimePriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, -20)
}
