package gateway

import (
	"testing"
	"time"
)

func testLimiter(max int, window time.Duration) (*Limiter, *time.Time) {
	l := NewLimiter(max, window)
	current := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestLimiterAllowsWithinWindow(t *testing.T) {
	l, _ := testLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, remaining := l.Allow("client-a")
		if !allowed || remaining != 0 {
			t.Fatalf("request %d: Allow() = (%v, %d), want (true, 0)", i+1, allowed, remaining)
		}
	}

	allowed, remaining := l.Allow("client-a")
	if allowed {
		t.Error("fourth request allowed, want denied")
	}
	if remaining != 60 {
		t.Errorf("remaining = %d, want 60", remaining)
	}
}

func TestLimiterRemainingRoundsUp(t *testing.T) {
	l, current := testLimiter(1, time.Minute)

	l.Allow("client-a")

	*current = current.Add(30*time.Second + 500*time.Millisecond)
	allowed, remaining := l.Allow("client-a")
	if allowed {
		t.Fatal("request within window allowed, want denied")
	}
	// 29.5 seconds left rounds up to 30.
	if remaining != 30 {
		t.Errorf("remaining = %d, want 30", remaining)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	l, current := testLimiter(1, time.Minute)

	l.Allow("client-a")
	if allowed, _ := l.Allow("client-a"); allowed {
		t.Fatal("second request in window allowed, want denied")
	}

	*current = current.Add(time.Minute)
	if allowed, _ := l.Allow("client-a"); !allowed {
		t.Error("request after window reset denied, want allowed")
	}
}

func TestLimiterClientsAreIndependent(t *testing.T) {
	l, _ := testLimiter(1, time.Minute)

	l.Allow("client-a")
	if allowed, _ := l.Allow("client-b"); !allowed {
		t.Error("client-b denied after client-a exhausted its window")
	}
}
