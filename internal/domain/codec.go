package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBoard is returned by ParseBoard for malformed input.
var ErrInvalidBoard = errors.New("invalid board")

// String renders the board as Size lines of X, O and '.'.
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			sb.WriteString(b.At(r, c).String())
		}
		if r < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseBoard reads a board written row-major with X/O for marks and
// '.', '_' or '-' for empty cells. Whitespace, '|' and '/' are ignored.
func ParseBoard(s string) (Board, error) {
	b := New()
	n := 0
	counts := map[Cell]int{}
	for _, ch := range s {
		var cell Cell
		switch ch {
		case ' ', '\t', '\n', '\r', '|', '/':
			continue
		case '.', '_', '-':
			cell = Empty
		case 'X', 'x':
			cell = PlayerOne
		case 'O', 'o':
			cell = PlayerTwo
		default:
			return Board{}, fmt.Errorf("%w: unexpected %q", ErrInvalidBoard, ch)
		}
		if n >= Size*Size {
			return Board{}, fmt.Errorf("%w: more than %d cells", ErrInvalidBoard, Size*Size)
		}
		if cell != Empty {
			b.MustApply(Move{Row: n / Size, Col: n % Size}, cell)
			counts[cell]++
		}
		n++
	}
	if n != Size*Size {
		return Board{}, fmt.Errorf("%w: got %d cells, want %d", ErrInvalidBoard, n, Size*Size)
	}
	// PlayerOne opens, so it leads by at most one mark and never trails.
	if d := counts[PlayerOne] - counts[PlayerTwo]; d != 0 && d != 1 {
		return Board{}, fmt.Errorf("%w: %d X against %d O", ErrInvalidBoard, counts[PlayerOne], counts[PlayerTwo])
	}
	return b, nil
}
