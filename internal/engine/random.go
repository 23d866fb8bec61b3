package engine

import (
	"fmt"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

// RandomMove picks uniformly among the legal moves of b. It panics if the
// random source returns an index outside [0, n).
func (e *Engine) RandomMove(b domain.Board) (domain.Move, bool) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return domain.Move{}, false
	}
	idx := e.random.Intn(len(moves))
	if idx < 0 || idx >= len(moves) {
		panic(fmt.Sprintf("engine: random source returned %d for Intn(%d)", idx, len(moves)))
	}
	return moves[idx], true
}
