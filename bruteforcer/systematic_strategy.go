package main

import (
	"log"
	"math/rand"
)

// Strategy yields the cells a bot will fire at, one per turn. Next reports
// false once every cell has been offered.
type Strategy interface {
	Next() (x, y int, ok bool)
}

func newStrategy(name string, size int) Strategy {
	switch name {
	case "random":
		return NewRandomStrategy(size)
	case "sweep":
		return NewSweepStrategy(size)
	default:
		log.Printf("unknown strategy %q, falling back to sweep", name)
		return NewSweepStrategy(size)
	}
}

// SweepStrategy walks the board row by row. Deterministic, so two sweep bots
// produce reproducible duels.
type SweepStrategy struct {
	size int
	next int
}

func NewSweepStrategy(size int) *SweepStrategy {
	return &SweepStrategy{size: size}
}

func (s *SweepStrategy) Next() (int, int, bool) {
	if s.next >= s.size*s.size {
		return 0, 0, false
	}
	x := s.next % s.size
	y := s.next / s.size
	s.next++
	return x, y, true
}

// RandomStrategy fires at every cell exactly once in a shuffled order.
type RandomStrategy struct {
	order []int
	size  int
	next  int
}

func NewRandomStrategy(size int) *RandomStrategy {
	order := rand.Perm(size * size)
	return &RandomStrategy{order: order, size: size}
}

func (s *RandomStrategy) Next() (int, int, bool) {
	if s.next >= len(s.order) {
		return 0, 0, false
	}
	cell := s.order[s.next]
	s.next++
	return cell % s.size, cell / s.size, true
}
