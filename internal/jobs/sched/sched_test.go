package sched

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func schedulers() map[string]Scheduler {
	return map[string]Scheduler{
		"pool":   NewPool(4, nil),
		"single": NewPool(1, nil),
		"inline": Inline{},
	}
}

func TestEveryIndexRunsExactlyOnce(t *testing.T) {
	const n = 103
	for name, s := range schedulers() {
		for _, chunk := range []int{1, 7, n, n + 5} {
			hits := make([]atomic.Int32, n)
			h, err := s.Schedule(n, chunk, func(start, end int) {
				if end-start > chunk {
					t.Errorf("%s: chunk [%d,%d) larger than %d", name, start, end, chunk)
				}
				for i := start; i < end; i++ {
					hits[i].Add(1)
				}
			})
			if err != nil {
				t.Fatalf("%s chunk %d: %v", name, chunk, err)
			}
			h.Complete()
			for i := range hits {
				if got := hits[i].Load(); got != 1 {
					t.Fatalf("%s chunk %d: index %d ran %d times", name, chunk, i, got)
				}
			}
		}
	}
}

func TestHugeChunkRunsEverythingInOneChunk(t *testing.T) {
	const n = 10
	for name, s := range schedulers() {
		var ran, calls atomic.Int32
		h, err := s.Schedule(n, math.MaxInt, func(start, end int) {
			calls.Add(1)
			ran.Add(int32(end - start))
		})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		h.Complete()
		if ran.Load() != n || calls.Load() != 1 {
			t.Fatalf("%s: ran %d of %d items in %d chunks", name, ran.Load(), n, calls.Load())
		}
	}
}

func TestZeroItemsNeverCallsBody(t *testing.T) {
	for name, s := range schedulers() {
		h, err := s.Schedule(0, 16, func(int, int) { t.Errorf("%s: body called", name) })
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		h.Complete()
	}
}

func TestInvalidChunkSizeIsRejected(t *testing.T) {
	for name, s := range schedulers() {
		for _, chunk := range []int{0, -3} {
			called := false
			_, err := s.Schedule(10, chunk, func(int, int) { called = true })
			if !errors.Is(err, ErrChunkSize) {
				t.Fatalf("%s chunk %d: expected ErrChunkSize, got %v", name, chunk, err)
			}
			if called {
				t.Fatalf("%s: body ran despite invalid chunk size", name)
			}
		}
		if _, err := s.Schedule(-1, 4, func(int, int) {}); !errors.Is(err, ErrCount) {
			t.Fatalf("%s: expected ErrCount, got %v", name, err)
		}
	}
}

func TestWorkerPanicSurfacesOnComplete(t *testing.T) {
	boom := errors.New("boom")
	for name, s := range schedulers() {
		h, err := s.Schedule(50, 5, func(start, end int) {
			if start <= 20 && 20 < end {
				panic(boom)
			}
		})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		var got any
		func() {
			defer func() { got = recover() }()
			h.Complete()
		}()
		pe, ok := got.(*PanicError)
		if !ok {
			t.Fatalf("%s: expected *PanicError, got %v", name, got)
		}
		if !errors.Is(pe, boom) {
			t.Fatalf("%s: panic value lost: %v", name, pe.Value)
		}
		if len(pe.Stack) == 0 {
			t.Fatalf("%s: missing worker stack", name)
		}
	}
}

func TestPoolCountsChunks(t *testing.T) {
	p := NewPool(3, nil)
	h, err := p.Schedule(40, 4, func(int, int) {})
	if err != nil {
		t.Fatal(err)
	}
	h.Complete()
	var total uint64
	for _, c := range p.Chunks() {
		total += c
	}
	if total != 10 {
		t.Fatalf("expected 10 chunks, counted %d", total)
	}
}

func TestPoolDefaultsToCPUCount(t *testing.T) {
	if NewPool(0, nil).Workers() < 1 {
		t.Fatal("pool must have at least one worker")
	}
}
