package service

import (
	"testing"
	"time"
)

func TestManualClock_FiresInDeadlineOrder(t *testing.T) {
	c := NewManualClock(testEpoch)
	var got []string

	c.AfterFunc(2*time.Second, func() { got = append(got, "b") })
	c.AfterFunc(time.Second, func() { got = append(got, "a") })
	c.AfterFunc(5*time.Second, func() { got = append(got, "c") })

	c.Advance(3 * time.Second)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("fired = %v, want [a b]", got)
	}
	if !c.Now().Equal(testEpoch.Add(3 * time.Second)) {
		t.Errorf("Now() = %v", c.Now())
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", c.Pending())
	}
}

func TestManualClock_ChainedCallbacks(t *testing.T) {
	c := NewManualClock(testEpoch)
	count := 0
	var schedule func()
	schedule = func() {
		c.AfterFunc(time.Second, func() {
			count++
			schedule()
		})
	}
	schedule()

	c.Advance(10 * time.Second)
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}

func TestManualClock_Stop(t *testing.T) {
	c := NewManualClock(testEpoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("first Stop() should report true")
	}
	if timer.Stop() {
		t.Error("second Stop() should report false")
	}
	c.Advance(time.Minute)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestSystemClock(t *testing.T) {
	c := SystemClock()
	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AfterFunc did not fire")
	}
	if time.Since(c.Now()) > time.Second {
		t.Error("Now() is not the wall clock")
	}
}
