//go:build !linux

package engine

// SetRealtimePriority is a no-op outside Linux: the OS-specific scheduling
// knobs spec §4.9 names (elevated priority before entering the loop) have
// no portable equivalent this repo implements.
func SetRealtimePriority() error { return nil }
