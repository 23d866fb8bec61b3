package app

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/jaminalder/tictactoe-minimax/internal/dependencies/mocks"
	"github.com/jaminalder/tictactoe-minimax/internal/dependencies/random"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/engine"
	"github.com/jaminalder/tictactoe-minimax/internal/testutil"
)

func newTestService(opts ...Option) *Service {
	return NewService(append([]Option{WithLogger(testutil.NopLogger())}, opts...)...)
}

func TestCreateAndGet(t *testing.T) {
	s := newTestService()
	gs, err := s.CreateGame()
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	if gs.ID == "" {
		t.Fatalf("expected non-empty game ID")
	}
	if gs.Game.Turn != domain.X || !gs.Game.Board.IsEmpty() {
		t.Fatalf("expected empty board with X to move")
	}
	if gs.Mode != ModeAI || gs.AIMark != domain.O || gs.Level != engine.LevelMinimax {
		t.Fatalf("unexpected defaults: mode=%v mark=%v level=%v", gs.Mode, gs.AIMark, gs.Level)
	}
	if gs.Created.IsZero() || gs.Updated.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	got, ok := s.Get(gs.ID)
	if !ok || got.ID != gs.ID {
		t.Fatalf("Get should find created game")
	}
}

func TestUnknownGame(t *testing.T) {
	s := newTestService()
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("expected missing game")
	}
	if _, err := s.Play("missing", domain.Move{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Subscribe(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayTriggersAIReply(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()

	st, err := s.Play(gs.ID, domain.Move{Row: 0, Col: 0})
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if st.Game.Board.Marked() != 2 {
		t.Fatalf("expected human and AI marks, got %d", st.Game.Board.Marked())
	}
	if st.LastAI == nil || *st.LastAI != (domain.Move{Row: 1, Col: 1}) {
		t.Fatalf("expected AI to take the centre, got %v", st.LastAI)
	}
	if st.Game.Board.At(1, 1) != domain.O || st.Game.Turn != domain.X {
		t.Fatalf("unexpected state after AI reply: cell=%v turn=%v", st.Game.Board.At(1, 1), st.Game.Turn)
	}
}

func TestPlayRejectsOccupied(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()
	if _, err := s.Play(gs.ID, domain.Move{Row: 0, Col: 0}); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if _, err := s.Play(gs.ID, domain.Move{Row: 1, Col: 1}); !errors.Is(err, domain.ErrOccupied) {
		t.Fatalf("expected ErrOccupied on the AI's cell, got %v", err)
	}
	if _, err := s.Play(gs.ID, domain.Move{Row: 3, Col: 0}); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestAIAsPlayerOneMovesFirst(t *testing.T) {
	s := newTestService(
		WithDefaults(engine.LevelMinimax, domain.X, ModeAI),
		WithEngineOptions(engine.WithPruning(true)),
	)
	gs, _ := s.CreateGame()
	if gs.Game.Board.Marked() != 1 || gs.Game.Board.At(0, 0) != domain.X {
		t.Fatalf("expected AI opening at (0,0), board:\n%s", gs.Game.Board)
	}
	if gs.Game.Turn != domain.O {
		t.Fatalf("expected human (O) to move, got %v", gs.Game.Turn)
	}
}

func TestPvPModeHasNoAIReplies(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()
	if st, _ := s.ToggleMode(gs.ID); st.Mode != ModePvP {
		t.Fatalf("expected pvp mode, got %v", st.Mode)
	}
	if _, err := s.Play(gs.ID, domain.Move{Row: 0, Col: 0}); err != nil {
		t.Fatalf("X play failed: %v", err)
	}
	st, err := s.Play(gs.ID, domain.Move{Row: 2, Col: 2})
	if err != nil {
		t.Fatalf("O play failed: %v", err)
	}
	if st.Game.Board.Marked() != 2 || st.LastAI != nil {
		t.Fatalf("expected only human moves, marked=%d lastAI=%v", st.Game.Board.Marked(), st.LastAI)
	}
	if st.Game.Board.At(2, 2) != domain.O {
		t.Fatalf("second human move should be O")
	}
}

func TestToggleToAIMovesOnItsTurn(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()
	s.ToggleMode(gs.ID)
	if _, err := s.Play(gs.ID, domain.Move{Row: 0, Col: 0}); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	st, err := s.ToggleMode(gs.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if st.Mode != ModeAI || st.Game.Board.Marked() != 2 || st.Game.Turn != domain.X {
		t.Fatalf("expected AI to reply after toggle: mode=%v marked=%d turn=%v", st.Mode, st.Game.Board.Marked(), st.Game.Turn)
	}
}

func TestRandomLevelUsesInjectedSource(t *testing.T) {
	rnd := mocks.NewMockRandom()
	s := newTestService(WithRandom(rnd))
	gs, _ := s.CreateGame()
	st, err := s.SetLevel(gs.ID, engine.LevelRandom)
	if err != nil || st.Level != engine.LevelRandom {
		t.Fatalf("SetLevel failed: level=%v err=%v", st, err)
	}
	rnd.QueueIntn(7)
	st, err = s.Play(gs.ID, domain.Move{Row: 0, Col: 0})
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	// eight empty cells remain; index 7 is the last one
	if st.LastAI == nil || *st.LastAI != (domain.Move{Row: 2, Col: 2}) {
		t.Fatalf("expected random pick (2,2), got %v", st.LastAI)
	}
	if _, err := s.SetLevel(gs.ID, -1); !errors.Is(err, engine.ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestGameOverBlocksFurtherMoves(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()
	s.ToggleMode(gs.ID)
	for _, m := range []domain.Move{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 0, Col: 2}} {
		if _, err := s.Play(gs.ID, m); err != nil {
			t.Fatalf("play %v failed: %v", m, err)
		}
	}
	latest, _ := s.Get(gs.ID)
	if !latest.Game.Over() || latest.Game.Outcome.Winner != domain.X {
		t.Fatalf("expected X win, got %+v", latest.Game.Outcome)
	}
	if _, err := s.Play(gs.ID, domain.Move{Row: 2, Col: 2}); !errors.Is(err, domain.ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	// switching back to AI on a finished game must not move
	st, _ := s.ToggleMode(gs.ID)
	if st.Game.Board.Marked() != 5 {
		t.Fatalf("AI moved on a finished game, marked=%d", st.Game.Board.Marked())
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()
	s.Play(gs.ID, domain.Move{Row: 0, Col: 0})
	s.SetLevel(gs.ID, engine.LevelRandom)
	s.ToggleMode(gs.ID)

	st, err := s.Reset(gs.ID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !st.Game.Board.IsEmpty() || st.Mode != ModeAI || st.Level != engine.LevelMinimax || st.LastAI != nil {
		t.Fatalf("unexpected state after reset: %+v", st)
	}
	if st.ID != gs.ID || !st.Created.Equal(gs.Created) {
		t.Fatalf("reset should keep identity")
	}
}

func TestHumanNeverBeatsMinimax(t *testing.T) {
	human := random.NewSeeded(3)
	s := newTestService(WithEngineOptions(engine.WithPruning(true)))
	for i := 0; i < 10; i++ {
		gs, _ := s.CreateGame()
		st := gs
		for !st.Game.Over() {
			moves := st.Game.Board.LegalMoves()
			var err error
			st, err = s.Play(gs.ID, moves[human.Intn(len(moves))])
			if err != nil {
				t.Fatalf("game %d: play failed: %v", i, err)
			}
		}
		if st.Game.Outcome.Winner == domain.X {
			t.Fatalf("game %d: human beat the engine:\n%s", i, st.Game.Board)
		}
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	ch, unsub, err := s.Subscribe(ctx, gs.ID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer unsub()

	if _, err := s.Play(gs.ID, domain.Move{Row: 0, Col: 0}); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	select {
	case st, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		if st.Game.Board.Marked() != 2 {
			t.Fatalf("expected snapshot after AI reply, marked=%d", st.Game.Board.Marked())
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for broadcast")
	}
}

func TestDropSlowSubscriber(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()
	s.ToggleMode(gs.ID)

	// Slow subscriber: never read
	ctxSlow, cancelSlow := context.WithCancel(context.Background())
	defer cancelSlow()
	slowCh, _, _ := s.Subscribe(ctxSlow, gs.ID)

	ctxFast, cancelFast := context.WithTimeout(context.Background(), time.Second*2)
	defer cancelFast()
	fastCh, unsubFast, _ := s.Subscribe(ctxFast, gs.ID)
	defer unsubFast()

	// Two quick updates; the fast subscriber drains between them
	moves := []domain.Move{{Row: 0, Col: 0}, {Row: 1, Col: 1}}
	for i, m := range moves {
		if _, err := s.Play(gs.ID, m); err != nil {
			t.Fatalf("play%d: %v", i+1, err)
		}
		select {
		case <-fastCh:
		case <-ctxFast.Done():
			t.Fatalf("fast subscriber did not receive update %d in time", i+1)
		}
	}

	// The slow subscriber got the first snapshot, then was dropped
	if _, ok := <-slowCh; !ok {
		t.Fatalf("expected the buffered first snapshot")
	}
	if _, ok := <-slowCh; ok {
		t.Fatalf("expected slow subscriber channel to be closed")
	}
}

// waitGoroutines polls until the goroutine count falls back to at most want.
func waitGoroutines(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > want {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines did not settle: have %d, want <= %d", runtime.NumGoroutine(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestUnsubscribeReleasesWatcher(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()
	before := runtime.NumGoroutine()

	for i := 0; i < 100; i++ {
		ch, unsub, err := s.Subscribe(context.Background(), gs.ID)
		if err != nil {
			t.Fatalf("subscribe %d failed: %v", i, err)
		}
		unsub()
		if _, ok := <-ch; ok {
			t.Fatalf("expected closed channel after unsubscribe")
		}
	}
	waitGoroutines(t, before)
}

func TestDroppedSubscriberReleasesWatcher(t *testing.T) {
	s := newTestService()
	gs, _ := s.CreateGame()
	s.ToggleMode(gs.ID)
	before := runtime.NumGoroutine()

	// never read; the second update drops it
	if _, _, err := s.Subscribe(context.Background(), gs.ID); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	for _, m := range []domain.Move{{Row: 0, Col: 0}, {Row: 1, Col: 1}} {
		if _, err := s.Play(gs.ID, m); err != nil {
			t.Fatalf("play %v failed: %v", m, err)
		}
	}
	waitGoroutines(t, before)
}
