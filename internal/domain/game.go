package domain

import "errors"

// ErrGameOver is returned when a move is attempted after the game ended.
var ErrGameOver = errors.New("game over")

// Game holds the current state of a Tic-Tac-Toe match: the board plus
// whose turn it is.
type Game struct {
	Board   Board
	Turn    Cell
	Outcome Outcome
}

// NewGame returns a new game with PlayerOne to move.
func NewGame() Game {
	return Game{Board: New(), Turn: PlayerOne}
}

// Over reports whether the game has finished.
func (g *Game) Over() bool { return g.Outcome.Over() }

// Play places the current turn's mark at m. The turn only flips while the
// game is still undecided.
func (g *Game) Play(m Move) error {
	if g.Over() {
		return ErrGameOver
	}
	if err := g.Board.Apply(m, g.Turn); err != nil {
		return err
	}

	g.Outcome = g.Board.Outcome()
	if g.Outcome.Over() {
		return nil
	}
	g.Turn = g.Turn.Opponent()
	return nil
}
