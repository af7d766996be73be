package db

import "testing"

// SetRunningInDocker overrides container detection for the duration of t
func SetRunningInDocker(t testing.TB, v bool) {
	old := runningInDocker
	runningInDocker = func() bool { return v }

	t.Cleanup(func() { runningInDocker = old })
}
