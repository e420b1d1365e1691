// Package testutil holds helpers for tests that drive the market store and
// coin views from goroutines.
package testutil

import (
	"testing"
	"time"
)

// WaitFor reports whether condition became true before timeout, checking it
// immediately and then every interval.
func WaitFor(t *testing.T, timeout, interval time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// Eventually fails the test with msg unless condition holds within a second,
// e.g. until a held fetch has reached the provider.
func Eventually(t *testing.T, msg string, condition func() bool) {
	t.Helper()
	if !WaitFor(t, time.Second, 5*time.Millisecond, condition) {
		t.Fatalf("condition not met within 1s: %s", msg)
	}
}
