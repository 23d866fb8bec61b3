package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

// Terminal scores are from PlayerOne's point of view.
const (
	scorePlayerOneWin = 1
	scorePlayerTwoWin = -1
	scoreDraw         = 0

	// bound lies outside every attainable score.
	bound = 100
)

// Minimax searches b exhaustively. When maximizing, PlayerOne is to move;
// otherwise PlayerTwo is. Among equally scored moves the first in
// row-major order wins.
func (e *Engine) Minimax(b domain.Board, maximizing bool) Result {
	if e.parallel {
		return e.parallelRoot(b, maximizing)
	}
	s := searcher{prune: e.prune}
	score, move, ok := s.search(b, maximizing, -bound, bound)
	return Result{Score: score, Move: move, HasMove: ok, Nodes: s.nodes}
}

// terminalScore scores b if the game is over. A completed line is checked
// before fullness.
func terminalScore(b domain.Board) (int, bool) {
	out := b.Outcome()
	switch out.Status {
	case domain.Win:
		if out.Winner == domain.PlayerOne {
			return scorePlayerOneWin, true
		}
		return scorePlayerTwoWin, true
	case domain.Draw:
		return scoreDraw, true
	}
	return 0, false
}

func markFor(maximizing bool) domain.Cell {
	if maximizing {
		return domain.PlayerOne
	}
	return domain.PlayerTwo
}

// better reports whether score strictly improves on best for the side.
func better(maximizing bool, score, best int) bool {
	if maximizing {
		return score > best
	}
	return score < best
}

type searcher struct {
	prune bool
	nodes int
}

// search is fail-soft alpha-beta when pruning is on and plain minimax
// otherwise. The window is only narrowed when pruning, so the returned
// score at the root is exact either way.
func (s *searcher) search(b domain.Board, maximizing bool, alpha, beta int) (int, domain.Move, bool) {
	s.nodes++
	if score, done := terminalScore(b); done {
		return score, domain.Move{}, false
	}

	moves := b.LegalMoves()
	if len(moves) == 0 {
		panic("engine: undecided board has no legal moves")
	}

	best := bound
	if maximizing {
		best = -bound
	}
	var bestMove domain.Move
	mark := markFor(maximizing)
	for _, m := range moves {
		child := b
		child.MustApply(m, mark)
		score, _, _ := s.search(child, !maximizing, alpha, beta)
		if better(maximizing, score, best) {
			best = score
			bestMove = m
		}
		if !s.prune {
			continue
		}
		if maximizing {
			alpha = max(alpha, best)
		} else {
			beta = min(beta, best)
		}
		if alpha >= beta {
			break
		}
	}
	return best, bestMove, true
}

// parallelRoot scores each root move on its own worker and reduces the
// scores in row-major order, so the result matches the sequential search.
func (e *Engine) parallelRoot(b domain.Board, maximizing bool) Result {
	if score, done := terminalScore(b); done {
		return Result{Score: score, Nodes: 1}
	}
	moves := b.LegalMoves()
	if len(moves) == 0 {
		panic("engine: undecided board has no legal moves")
	}

	type branch struct {
		score int
		nodes int
	}
	branches := make([]branch, len(moves))
	mark := markFor(maximizing)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range moves {
		g.Go(func() error {
			child := b
			child.MustApply(m, mark)
			s := searcher{prune: e.prune}
			score, _, _ := s.search(child, !maximizing, -bound, bound)
			branches[i] = branch{score: score, nodes: s.nodes}
			return nil
		})
	}
	// Workers only return nil; Wait is the join.
	_ = g.Wait()

	res := Result{Score: bound, Nodes: 1, HasMove: true}
	if maximizing {
		res.Score = -bound
	}
	for i, br := range branches {
		res.Nodes += br.nodes
		if better(maximizing, br.score, res.Score) {
			res.Score = br.score
			res.Move = moves[i]
		}
	}
	return res
}
