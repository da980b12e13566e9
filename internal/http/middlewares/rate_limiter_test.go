package middlewares

import (
	"testing"
	"time"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Now()

	if !rl.allow("10.0.0.1", now) || !rl.allow("10.0.0.1", now) {
		t.Fatal("burst of 2 not granted")
	}
	if rl.allow("10.0.0.1", now) {
		t.Error("third request within the burst window allowed")
	}

	// 500ms at 1/s refills half a token: still short of one.
	if rl.allow("10.0.0.1", now.Add(500*time.Millisecond)) {
		t.Error("allowed before a full token refilled")
	}
	if !rl.allow("10.0.0.1", now.Add(2*time.Second)) {
		t.Error("denied after refill")
	}
}

func TestRateLimiterClientsIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()

	if !rl.allow("10.0.0.1", now) {
		t.Fatal("first client denied")
	}
	if !rl.allow("10.0.0.2", now) {
		t.Error("second client shares the first client's bucket")
	}
	if rl.allow("10.0.0.1", now) {
		t.Error("exhausted client allowed")
	}
}

func TestRateLimiterSweepsStaleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.allow("10.0.0.1", now)

	rl.mu.Lock()
	rl.sweep(now.Add(staleAfter + time.Minute))
	left := len(rl.buckets)
	rl.mu.Unlock()
	if left != 0 {
		t.Errorf("stale buckets remaining = %d, want 0", left)
	}
}
