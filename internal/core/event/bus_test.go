package event

import "testing"

type ping struct{ N int }

func TestEventsArriveNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.N) })

	Emit(b, ping{N: 1})
	Emit(b, ping{N: 2})
	if Pending[ping](b) != 2 {
		t.Fatalf("pending = %d", Pending[ping](b))
	}
	if n := b.DispatchAll(); n != 0 || len(got) != 0 {
		t.Fatal("events delivered before swap")
	}

	b.SwapBuffers()
	if n := b.DispatchAll(); n != 2 {
		t.Fatalf("delivered %d, want 2", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}

	b.SwapBuffers()
	if n := b.DispatchAll(); n != 0 {
		t.Fatalf("old events redelivered: %d", n)
	}
}

func TestEventsWithoutSubscribersAreDropped(t *testing.T) {
	b := NewBus()
	Emit(b, JobCompleted{System: "move", Entities: 3})
	b.SwapBuffers()
	if n := b.DispatchAll(); n != 1 {
		t.Fatalf("delivered %d", n)
	}
}
