package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaminalder/tictactoe-minimax/internal/dependencies/random"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/engine"
)

// Errors exposed by the service layer.
var (
	ErrNotFound = errors.New("game not found")
)

// Mode selects who plays the second seat.
type Mode uint8

const (
	// ModeAI pits a human against the engine.
	ModeAI Mode = iota
	// ModePvP lets two humans alternate on the same board.
	ModePvP
)

func (m Mode) String() string {
	if m == ModePvP {
		return "pvp"
	}
	return "ai"
}

// GameState is the snapshot handed out to callers and subscribers.
type GameState struct {
	ID      string
	Game    domain.Game
	Mode    Mode
	Level   engine.Level
	AIMark  domain.Cell
	LastAI  *domain.Move
	Created time.Time
	Updated time.Time
}

type session struct {
	state  GameState
	engine *engine.Engine
}

func (s *session) snapshot() GameState {
	cp := s.state
	if s.state.LastAI != nil {
		m := *s.state.LastAI
		cp.LastAI = &m
	}
	return cp
}

type subscriber struct {
	ch        chan GameState
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
		close(s.done)
	})
}

// Service manages games, their engines and subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*session
	subs   map[string]map[*subscriber]struct{}
	cfg    config
	logger *slog.Logger
}

type config struct {
	level      engine.Level
	aiMark     domain.Cell
	mode       Mode
	random     random.Random
	engineOpts []engine.Option
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRandom sets the random source shared by the engines.
func WithRandom(rnd random.Random) Option {
	return func(s *Service) { s.cfg.random = rnd }
}

// WithDefaults sets the level, AI mark and mode used for new and reset
// games.
func WithDefaults(level engine.Level, aiMark domain.Cell, mode Mode) Option {
	return func(s *Service) {
		s.cfg.level = level
		if aiMark.IsPlayer() {
			s.cfg.aiMark = aiMark
		}
		s.cfg.mode = mode
	}
}

// WithEngineOptions passes extra options to every engine the service builds.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Service) { s.cfg.engineOpts = append(s.cfg.engineOpts, opts...) }
}

// NewService creates a service. New games default to ModeAI with the
// engine playing PlayerTwo at LevelMinimax.
func NewService(opts ...Option) *Service {
	s := &Service{
		games:  make(map[string]*session),
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: slog.Default(),
		cfg: config{
			level:  engine.LevelMinimax,
			aiMark: domain.PlayerTwo,
			mode:   ModeAI,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.random == nil {
		s.cfg.random = random.New()
	}
	return s
}

func (s *Service) newSession(id string, created time.Time) *session {
	opts := append([]engine.Option{
		engine.WithLevel(s.cfg.level),
		engine.WithMark(s.cfg.aiMark),
		engine.WithLogger(s.logger),
	}, s.cfg.engineOpts...)
	eng := engine.New(s.cfg.random, opts...)
	return &session{
		engine: eng,
		state: GameState{
			ID:      id,
			Game:    domain.NewGame(),
			Mode:    s.cfg.mode,
			Level:   eng.Level(),
			AIMark:  eng.Mark(),
			Created: created,
			Updated: created,
		},
	}
}

// CreateGame creates and registers a new game. When the engine holds
// PlayerOne it has already moved in the returned state.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	sess := s.newSession(id, time.Now())
	s.games[id] = sess
	s.logger.Info("game created", slog.String("game_id", id), slog.String("mode", sess.state.Mode.String()))
	s.aiTurnLocked(sess)
	cp := sess.snapshot()
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := sess.snapshot()
	return &cp, true
}

// Play applies a human move for the side to move, then lets the engine
// reply in ModeAI.
func (s *Service) Play(id string, m domain.Move) (*GameState, error) {
	return s.update(id, func(sess *session) error {
		if err := sess.state.Game.Play(m); err != nil {
			return err
		}
		sess.state.LastAI = nil
		s.aiTurnLocked(sess)
		return nil
	})
}

// SetLevel changes the engine level of a running game.
func (s *Service) SetLevel(id string, level engine.Level) (*GameState, error) {
	return s.update(id, func(sess *session) error {
		if err := sess.engine.SetLevel(level); err != nil {
			return err
		}
		sess.state.Level = level
		return nil
	})
}

// ToggleMode flips between ModeAI and ModePvP. Switching to ModeAI on the
// engine's turn makes it move straight away.
func (s *Service) ToggleMode(id string) (*GameState, error) {
	return s.update(id, func(sess *session) error {
		if sess.state.Mode == ModeAI {
			sess.state.Mode = ModePvP
		} else {
			sess.state.Mode = ModeAI
		}
		s.aiTurnLocked(sess)
		return nil
	})
}

// Reset discards the board and restores the service defaults for the game.
func (s *Service) Reset(id string) (*GameState, error) {
	return s.update(id, func(sess *session) error {
		*sess = *s.newSession(sess.state.ID, sess.state.Created)
		s.aiTurnLocked(sess)
		return nil
	})
}

// update runs fn on the game under the lock, stamps it and broadcasts the
// resulting snapshot.
func (s *Service) update(id string, fn func(*session) error) (*GameState, error) {
	s.mu.Lock()
	sess, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if err := fn(sess); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sess.state.Updated = time.Now()
	cp := sess.snapshot()
	s.broadcastLocked(id, cp)
	s.mu.Unlock()
	return &cp, nil
}

// aiTurnLocked lets the engine move if the game is running in ModeAI and
// it holds the turn.
func (s *Service) aiTurnLocked(sess *session) {
	g := &sess.state.Game
	if sess.state.Mode != ModeAI || g.Over() || g.Turn != sess.engine.Mark() {
		return
	}
	res := sess.engine.Search(g.Board)
	if !res.HasMove {
		s.logger.Error("engine returned no move on a running game", slog.String("game_id", sess.state.ID))
		return
	}
	if err := g.Play(res.Move); err != nil {
		s.logger.Error("engine move rejected",
			slog.String("game_id", sess.state.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	m := res.Move
	sess.state.LastAI = &m

	eval := slog.Int("eval", res.Score)
	if res.Random {
		eval = slog.String("eval", "random")
	}
	s.logger.Info("ai move",
		slog.String("game_id", sess.state.ID),
		slog.Int("row", m.Row),
		slog.Int("col", m.Col),
		eval,
		slog.String("level", sess.engine.Level().String()),
	)
	if g.Over() {
		s.logger.Info("game over",
			slog.String("game_id", sess.state.ID),
			slog.String("status", g.Outcome.Status.String()),
			slog.String("winner", g.Outcome.Winner.String()),
		)
	}
}

// broadcastLocked fans the snapshot out without blocking and drops slow
// subscribers. s.mu guards every send and every close.
func (s *Service) broadcastLocked(id string, st GameState) {
	dropped := 0
	for sub := range s.subs[id] {
		select {
		case sub.ch <- st:
		default:
			sub.close()
			delete(s.subs[id], sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Warn("dropped slow subscribers", slog.String("game_id", id), slog.Int("count", dropped))
	}
}

// Subscribe registers a subscriber for a game. It returns a channel of
// state snapshots and an unsubscribe func; cancelling ctx unsubscribes too.
// The watcher goroutine exits on whichever comes first, unsub, ctx or a drop.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, 1), done: make(chan struct{})}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-sub.done:
		}
	}()
	return sub.ch, unsub, nil
}
