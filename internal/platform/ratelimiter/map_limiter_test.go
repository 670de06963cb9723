package ratelimiter

import (
	"testing"
	"time"
)

func TestNewRejectsInvalidArgs(t *testing.T) {
	if l := New(0, 1, 0); l != nil {
		t.Fatal("expected nil limiter for zero rps")
	}
	if l := New(1, 0, 0); l != nil {
		t.Fatal("expected nil limiter for zero burst")
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var l *MapLimiter
	for i := 0; i < 10; i++ {
		if !l.Allow("/cart", time.Now()) {
			t.Fatal("nil limiter must allow")
		}
	}
}

func TestAllowIsPerKey(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Unix(1000, 0)
	if !l.Allow("/cart", now) || !l.Allow("/cart", now) {
		t.Fatal("expected burst of two to pass")
	}
	if l.Allow("/cart", now) {
		t.Fatal("expected third call within burst window to be throttled")
	}
	if !l.Allow("/orders/all", now) {
		t.Fatal("expected independent bucket for another key")
	}
	if !l.Allow("/cart", now.Add(time.Second)) {
		t.Fatal("expected token refill after one second")
	}
}

func TestIdleBucketsAreSwept(t *testing.T) {
	l := New(5, 5, time.Second)
	start := time.Unix(2000, 0)
	l.Allow("/a", start)
	l.Allow("/b", start)
	if got := l.Len(); got != 2 {
		t.Fatalf("unexpected bucket count: got=%d want=2", got)
	}
	l.Allow("/c", start.Add(2*time.Minute))
	if got := l.Len(); got != 1 {
		t.Fatalf("unexpected bucket count after sweep: got=%d want=1", got)
	}
}
