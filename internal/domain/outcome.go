package domain

// Status classifies a board.
type Status uint8

const (
	Undecided Status = iota
	Win
	Draw
)

func (s Status) String() string {
	switch s {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "undecided"
	}
}

// LineKind names the shape of a winning line.
type LineKind uint8

const (
	NoLine LineKind = iota
	RowLine
	ColumnLine
	// Diagonal runs from (0,0) to (Size-1,Size-1).
	Diagonal
	// AntiDiagonal runs from (Size-1,0) to (0,Size-1).
	AntiDiagonal
)

// Line identifies one of the winning lines. Index is the row or column
// number and is zero for the diagonals.
type Line struct {
	Kind  LineKind
	Index int
}

// Cells returns the cells of the line in board order.
func (l Line) Cells() []Move {
	out := make([]Move, 0, Size)
	for i := 0; i < Size; i++ {
		switch l.Kind {
		case RowLine:
			out = append(out, Move{Row: l.Index, Col: i})
		case ColumnLine:
			out = append(out, Move{Row: i, Col: l.Index})
		case Diagonal:
			out = append(out, Move{Row: i, Col: i})
		case AntiDiagonal:
			out = append(out, Move{Row: Size - 1 - i, Col: i})
		default:
			return nil
		}
	}
	return out
}

// Outcome is the terminal classification of a board. Winner and Line are
// only set when Status is Win.
type Outcome struct {
	Status Status
	Winner Cell
	Line   Line
}

// Over reports whether the game cannot continue.
func (o Outcome) Over() bool { return o.Status != Undecided }

// winLines holds every winning line in check order: rows, columns, then
// the two diagonals.
var winLines = func() []winLine {
	ls := make([]Line, 0, 2*Size+2)
	for r := 0; r < Size; r++ {
		ls = append(ls, Line{Kind: RowLine, Index: r})
	}
	for c := 0; c < Size; c++ {
		ls = append(ls, Line{Kind: ColumnLine, Index: c})
	}
	ls = append(ls, Line{Kind: Diagonal}, Line{Kind: AntiDiagonal})

	out := make([]winLine, len(ls))
	for i, ln := range ls {
		out[i].line = ln
		for j, m := range ln.Cells() {
			out[i].idx[j] = m.index()
		}
	}
	return out
}()

type winLine struct {
	line Line
	idx  [Size]int
}

// Outcome evaluates the winning lines and then fullness, so a move that
// completes a line and fills the board counts as a win.
func (b Board) Outcome() Outcome {
	for _, wl := range winLines {
		if side, ok := b.lineOwner(wl.idx); ok {
			return Outcome{Status: Win, Winner: side, Line: wl.line}
		}
	}
	if b.IsFull() {
		return Outcome{Status: Draw}
	}
	return Outcome{Status: Undecided}
}

func (b Board) lineOwner(idx [Size]int) (Cell, bool) {
	first := b.cells[idx[0]]
	if first == Empty {
		return Empty, false
	}
	for _, i := range idx[1:] {
		if b.cells[i] != first {
			return Empty, false
		}
	}
	return first, true
}
