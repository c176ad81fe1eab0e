package trigger

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestRaiseConsume(t *testing.T) {
	var tr Trigger
	if tr.Consume() {
		t.Error("Consume() on a fresh trigger = true")
	}

	tr.Raise()
	tr.Raise()
	if !tr.Pending() {
		t.Error("Pending() = false after Raise")
	}
	if !tr.Consume() {
		t.Error("Consume() after Raise = false")
	}
	if tr.Consume() {
		t.Error("second Consume() = true, want one export per raise")
	}
}

func TestConsumeOnce(t *testing.T) {
	var tr Trigger
	tr.Raise()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.Consume() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Errorf("%d consumers won, want 1", got)
	}
}
