package board

import (
	"errors"
	"math/rand/v2"
)

var (
	ErrOutOfBounds  = errors.New("coordinates out of bounds")
	ErrCellOccupied = errors.New("cell already occupied")
	ErrNoShipAtCell = errors.New("no ship at position")
)

// Cell is the state of a single board position.
type Cell uint8

const (
	Empty Cell = iota
	Ship
	Hit
	Miss
)

// Glyph returns the single-character wire representation of the cell.
func (c Cell) Glyph() string {
	switch c {
	case Ship:
		return "S"
	case Hit:
		return "X"
	case Miss:
		return "O"
	default:
		return "~"
	}
}

// ShotResult is the outcome of resolving a shot against a board.
type ShotResult int

const (
	ShotMiss ShotResult = iota
	ShotHit
	ShotAlreadyTargeted
)

// Board is one player's square grid of cells. Cells only ever transition
// Empty->Ship (placement), Ship->Hit and Empty->Miss (combat); Hit and Miss
// are terminal. A Board is owned by exactly one lobby and is not safe for
// concurrent use on its own.
type Board struct {
	size  int
	cells [][]Cell
}

// New creates an all-empty board with the given side length.
func New(size int) *Board {
	b := &Board{size: size}
	b.Reset()
	return b
}

// Size returns the side length of the board.
func (b *Board) Size() int {
	return b.size
}

// Reset returns every cell to Empty.
func (b *Board) Reset() {
	cells := make([][]Cell, b.size)
	for y := range cells {
		cells[y] = make([]Cell, b.size)
	}
	b.cells = cells
}

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.size && y < b.size
}

// At returns the cell state at (x, y).
func (b *Board) At(x, y int) (Cell, error) {
	if !b.inBounds(x, y) {
		return Empty, ErrOutOfBounds
	}
	return b.cells[y][x], nil
}

// Place puts a ship on an empty cell.
func (b *Board) Place(x, y int) error {
	if !b.inBounds(x, y) {
		return ErrOutOfBounds
	}
	if b.cells[y][x] != Empty {
		return ErrCellOccupied
	}
	b.cells[y][x] = Ship
	return nil
}

// Remove takes a ship off the board again.
func (b *Board) Remove(x, y int) error {
	if !b.inBounds(x, y) {
		return ErrOutOfBounds
	}
	if b.cells[y][x] != Ship {
		return ErrNoShipAtCell
	}
	b.cells[y][x] = Empty
	return nil
}

// ResolveShot applies a shot at (x, y). Shooting a cell that was already
// resolved returns ShotAlreadyTargeted and leaves the board untouched.
func (b *Board) ResolveShot(x, y int) (ShotResult, error) {
	if !b.inBounds(x, y) {
		return ShotMiss, ErrOutOfBounds
	}
	switch b.cells[y][x] {
	case Hit, Miss:
		return ShotAlreadyTargeted, nil
	case Ship:
		b.cells[y][x] = Hit
		return ShotHit, nil
	default:
		b.cells[y][x] = Miss
		return ShotMiss, nil
	}
}

// ShipsRemaining counts cells still holding an unhit ship.
func (b *Board) ShipsRemaining() int {
	count := 0
	for _, row := range b.cells {
		for _, cell := range row {
			if cell == Ship {
				count++
			}
		}
	}
	return count
}

// FillRandom places up to n ships on random free cells and returns how many
// were placed. The count is deterministic, the positions are not.
func (b *Board) FillRandom(n int) int {
	type point struct{ x, y int }
	var free []point
	for y, row := range b.cells {
		for x, cell := range row {
			if cell == Empty {
				free = append(free, point{x, y})
			}
		}
	}
	rand.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})
	placed := 0
	for _, p := range free {
		if placed >= n {
			break
		}
		b.cells[p.y][p.x] = Ship
		placed++
	}
	return placed
}

// PublicView returns a copy of the board as the opponent is allowed to see
// it: unhit ships are masked as Empty, Hit and Miss stay visible.
func (b *Board) PublicView() *Board {
	view := New(b.size)
	for y, row := range b.cells {
		for x, cell := range row {
			if cell == Hit || cell == Miss {
				view.cells[y][x] = cell
			}
		}
	}
	return view
}

// Rows renders the board as rows of wire glyphs.
func (b *Board) Rows() [][]string {
	rows := make([][]string, b.size)
	for y, row := range b.cells {
		rows[y] = make([]string, b.size)
		for x, cell := range row {
			rows[y][x] = cell.Glyph()
		}
	}
	return rows
}
