package domain

import (
	"errors"
	"fmt"
)

// Size is the board edge length.
const Size = 3

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	PlayerOne
	PlayerTwo
)

// X and O are the conventional symbols for the two players.
const (
	X = PlayerOne
	O = PlayerTwo
)

// Opponent returns the other player's mark, or Empty for Empty.
func (c Cell) Opponent() Cell {
	switch c {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	default:
		return Empty
	}
}

// IsPlayer reports whether c is one of the two player marks.
func (c Cell) IsPlayer() bool { return c == PlayerOne || c == PlayerTwo }

func (c Cell) String() string {
	switch c {
	case PlayerOne:
		return "X"
	case PlayerTwo:
		return "O"
	default:
		return "."
	}
}

// Move addresses a single cell.
type Move struct {
	Row int
	Col int
}

func (m Move) inBounds() bool {
	return m.Row >= 0 && m.Row < Size && m.Col >= 0 && m.Col < Size
}

func (m Move) index() int { return m.Row*Size + m.Col }

// Errors returned by board operations.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrInvalidMark = errors.New("invalid mark")
)

// Board is a fixed Size x Size grid stored row-major. It is a value type:
// assigning a Board yields an independent copy.
type Board struct {
	cells  [Size * Size]Cell
	marked int
}

// New returns an empty board.
func New() Board {
	return Board{}
}

// Apply marks the cell at m with mark. Marks are never overwritten; the
// board is left untouched when an error is returned.
func (b *Board) Apply(m Move, mark Cell) error {
	if !m.inBounds() {
		return ErrOutOfBounds
	}
	if !mark.IsPlayer() {
		return ErrInvalidMark
	}
	idx := m.index()
	if b.cells[idx] != Empty {
		return ErrOccupied
	}
	b.cells[idx] = mark
	b.marked++
	return nil
}

// MustApply is Apply for callers that have already validated the move.
// It panics on a contract violation.
func (b *Board) MustApply(m Move, mark Cell) {
	if err := b.Apply(m, mark); err != nil {
		panic(fmt.Sprintf("domain: apply %v at (%d,%d): %v", mark, m.Row, m.Col, err))
	}
}

// At returns the cell at (row, col). Out-of-range coordinates read as Empty.
func (b Board) At(row, col int) Cell {
	m := Move{Row: row, Col: col}
	if !m.inBounds() {
		return Empty
	}
	return b.cells[m.index()]
}

// IsEmptyCell reports whether (row, col) is on the board and unmarked.
func (b Board) IsEmptyCell(row, col int) bool {
	m := Move{Row: row, Col: col}
	return m.inBounds() && b.cells[m.index()] == Empty
}

// LegalMoves lists every empty cell in row-major order.
func (b Board) LegalMoves() []Move {
	moves := make([]Move, 0, len(b.cells)-b.marked)
	for i, c := range b.cells {
		if c == Empty {
			moves = append(moves, Move{Row: i / Size, Col: i % Size})
		}
	}
	return moves
}

// Marked returns the number of non-empty cells.
func (b Board) Marked() int { return b.marked }

// IsFull reports whether every cell is marked.
func (b Board) IsFull() bool { return b.marked == len(b.cells) }

// IsEmpty reports whether no cell is marked.
func (b Board) IsEmpty() bool { return b.marked == 0 }
