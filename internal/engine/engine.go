// Package engine picks moves for the automated player, either uniformly at
// random or by exhaustive minimax search.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaminalder/tictactoe-minimax/internal/dependencies/random"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

// Level selects the move strategy. Anything at or above LevelMinimax
// searches the full game tree.
type Level int

const (
	LevelRandom  Level = 0
	LevelMinimax Level = 1
)

func (l Level) String() string {
	if l <= LevelRandom {
		return "random"
	}
	return "minimax"
}

// Errors returned by the engine.
var (
	ErrNoMove       = errors.New("no move available")
	ErrInvalidLevel = errors.New("invalid level")
)

// Result describes a search. Move is only meaningful when HasMove is set;
// Score is zero for random picks.
type Result struct {
	Score   int
	Move    domain.Move
	HasMove bool
	Nodes   int
	Random  bool
}

// Engine chooses moves for one automated player. Level and mark can be
// changed between calls. An Engine is not safe for concurrent use.
type Engine struct {
	level    Level
	mark     domain.Cell
	prune    bool
	parallel bool
	random   random.Random
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLevel sets the starting level. Negative levels are clamped to
// LevelRandom.
func WithLevel(l Level) Option {
	return func(e *Engine) {
		if l < LevelRandom {
			l = LevelRandom
		}
		e.level = l
	}
}

// WithMark sets the automated player's mark. Non-player values are ignored.
func WithMark(mark domain.Cell) Option {
	return func(e *Engine) {
		if mark.IsPlayer() {
			e.mark = mark
		}
	}
}

// WithPruning enables alpha-beta cutoffs. The chosen move is unchanged.
func WithPruning(on bool) Option {
	return func(e *Engine) { e.prune = on }
}

// WithParallelRoot searches the root moves concurrently and reduces the
// results in row-major order. The chosen move is unchanged.
func WithParallelRoot(on bool) Option {
	return func(e *Engine) { e.parallel = on }
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine playing PlayerTwo at LevelMinimax. A nil rnd
// falls back to a crypto-backed source.
func New(rnd random.Random, opts ...Option) *Engine {
	if rnd == nil {
		rnd = random.New()
	}
	e := &Engine{
		level:  LevelMinimax,
		mark:   domain.PlayerTwo,
		random: rnd,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Level returns the configured level.
func (e *Engine) Level() Level { return e.level }

// SetLevel changes the level for subsequent searches.
func (e *Engine) SetLevel(l Level) error {
	if l < LevelRandom {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, l)
	}
	e.level = l
	return nil
}

// Mark returns the automated player's mark.
func (e *Engine) Mark() domain.Cell { return e.mark }

// SetMark changes the automated player's mark.
func (e *Engine) SetMark(mark domain.Cell) error {
	if !mark.IsPlayer() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidMark, mark)
	}
	e.mark = mark
	return nil
}

// Search runs the configured strategy on b. Terminal boards return
// immediately without a move.
func (e *Engine) Search(b domain.Board) Result {
	if e.level <= LevelRandom {
		if b.Outcome().Over() {
			return Result{Random: true}
		}
		m, ok := e.RandomMove(b)
		return Result{Move: m, HasMove: ok, Random: true}
	}

	res := e.Minimax(b, e.mark == domain.PlayerOne)
	e.logger.Debug("minimax search",
		slog.String("mark", e.mark.String()),
		slog.Int("score", res.Score),
		slog.Int("nodes", res.Nodes),
		slog.Bool("pruning", e.prune),
		slog.Bool("parallel", e.parallel),
	)
	return res
}

// ChooseMove returns the move the automated player should make on b, or
// ErrNoMove when b is already decided.
func (e *Engine) ChooseMove(b domain.Board) (domain.Move, error) {
	res := e.Search(b)
	if !res.HasMove {
		return domain.Move{}, ErrNoMove
	}
	return res.Move, nil
}
