package event

import "testing"

type ping struct{ n int }

func TestDeliveryWaitsForSwap(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(ev ping) { got = append(got, ev.n) })

	Emit(b, ping{1})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered before swap: %v", got)
	}
	if !b.Pending() {
		t.Fatal("queued event not pending")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("got %v; want [1]", got)
	}
}

func TestDeliveredEventsAreNotPending(t *testing.T) {
	b := NewBus()
	Subscribe(b, func(ping) {})

	Emit(b, ping{1})
	b.SwapBuffers()
	b.DispatchAll()
	if b.Pending() {
		t.Error("delivered events still counted as pending")
	}
}

func TestCascadeTerminatesWithoutExtraPass(t *testing.T) {
	b := NewBus()
	var calls int
	Subscribe(b, func(ev ping) {
		calls++
		if ev.n > 0 {
			Emit(b, ping{ev.n - 1})
		}
	})

	Emit(b, ping{2})
	passes := 0
	for b.Pending() {
		passes++
		b.SwapBuffers()
		b.DispatchAll()
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
	// one pass per emitted generation, no trailing no-op pass
	if passes != 3 {
		t.Errorf("passes = %d; want 3", passes)
	}
}
