// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq_test

import (
	"testing"
	"time"

	"code.hybscloud.com/pcq"
)

const defaultTimeout = 10 * time.Second

// runWithTimeout runs f and fails the test if it does not return within
// timeout. A hang is a liveness bug, so the test must not wait forever.
func runWithTimeout(t *testing.T, timeout time.Duration, f func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v", timeout)
	}
}

// waitUntil polls cond until it returns true or timeout expires.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout: %s", msg)
		}
		time.Sleep(time.Millisecond)
	}
}

// scaled shrinks a workload under the race detector, which slows the
// contended loops by an order of magnitude.
func scaled(n int) int {
	if pcq.RaceEnabled {
		return max(n/10, 1)
	}
	return n
}
