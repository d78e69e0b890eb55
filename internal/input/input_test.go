package input

import (
	"sync"
	"testing"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
		ok   bool
	}{
		{"commit", Commit, true},
		{" COPY ", Duplicate, true},
		{"left", RotateLeft, true},
		{"delete", Delete, true},
		{"jump", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAction(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseAction(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if Action(99).String() != "unknown" {
		t.Error("expected unknown for out of range action")
	}
}

func TestQueue_DrainKeepsOrder(t *testing.T) {
	q := NewQueue()
	q.Push(Commit, RotateLeft)
	q.Push(Inspect)

	got := q.Drain()
	want := []Action{Commit, RotateLeft, Inspect}
	if len(got) != len(want) {
		t.Fatalf("expected %d actions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue after drain, got %d", q.Len())
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Push(Commit, Commit)
	q.Clear()
	if q.Len() != 0 {
		t.Errorf("expected 0 after clear, got %d", q.Len())
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push(Commit)
		}()
	}
	wg.Wait()
	if n := len(q.Drain()); n != 50 {
		t.Errorf("expected 50 actions, got %d", n)
	}
}
