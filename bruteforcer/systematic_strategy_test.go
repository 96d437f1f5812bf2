package main

import "testing"

func TestSweepCoversBoardOnce(t *testing.T) {
	s := NewSweepStrategy(3)
	seen := make(map[[2]int]bool)
	for {
		x, y, ok := s.Next()
		if !ok {
			break
		}
		if x < 0 || x >= 3 || y < 0 || y >= 3 {
			t.Fatalf("out of bounds cell (%d,%d)", x, y)
		}
		if seen[[2]int{x, y}] {
			t.Fatalf("cell (%d,%d) offered twice", x, y)
		}
		seen[[2]int{x, y}] = true
	}
	if len(seen) != 9 {
		t.Fatalf("covered %d cells, want 9", len(seen))
	}
}

func TestSweepOrderIsRowMajor(t *testing.T) {
	s := NewSweepStrategy(2)
	want := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i, w := range want {
		x, y, ok := s.Next()
		if !ok {
			t.Fatalf("strategy exhausted at step %d", i)
		}
		if x != w[0] || y != w[1] {
			t.Fatalf("step %d: got (%d,%d), want (%d,%d)", i, x, y, w[0], w[1])
		}
	}
}

func TestRandomCoversBoardOnce(t *testing.T) {
	s := NewRandomStrategy(4)
	seen := make(map[[2]int]bool)
	for {
		x, y, ok := s.Next()
		if !ok {
			break
		}
		if seen[[2]int{x, y}] {
			t.Fatalf("cell (%d,%d) offered twice", x, y)
		}
		seen[[2]int{x, y}] = true
	}
	if len(seen) != 16 {
		t.Fatalf("covered %d cells, want 16", len(seen))
	}
}

func TestUnknownStrategyFallsBackToSweep(t *testing.T) {
	s := newStrategy("bogus", 2)
	if _, ok := s.(*SweepStrategy); !ok {
		t.Fatalf("got %T, want *SweepStrategy", s)
	}
}
