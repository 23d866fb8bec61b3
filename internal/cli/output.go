package cli

import (
	"fmt"
	"io"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

func describeOutcome(o domain.Outcome) string {
	switch o.Status {
	case domain.Win:
		return fmt.Sprintf("%v wins", o.Winner)
	case domain.Draw:
		return "draw"
	default:
		return "in progress"
	}
}

func printBoard(w io.Writer, b domain.Board) {
	fmt.Fprintln(w, b.String())
}
