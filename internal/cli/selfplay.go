package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/engine"
)

func newSelfPlayCmd(e *env) *cobra.Command {
	var (
		games  int
		xLevel int
		oLevel int
	)

	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Play the engine against itself",
		RunE: func(cmd *cobra.Command, args []string) error {
			if games < 1 {
				return fmt.Errorf("--games must be at least 1, got %d", games)
			}
			rnd := e.cfg.Random()
			newPlayer := func(mark domain.Cell, level int) *engine.Engine {
				opts := append(e.engineOptions(), engine.WithMark(mark))
				if level >= 0 {
					opts = append(opts, engine.WithLevel(engine.Level(level)))
				}
				return engine.New(rnd, opts...)
			}
			x := newPlayer(domain.PlayerOne, xLevel)
			o := newPlayer(domain.PlayerTwo, oLevel)

			out := cmd.OutOrStdout()
			tally := map[string]int{}
			for i := 1; i <= games; i++ {
				outcome, board, err := playOut(x, o)
				if err != nil {
					return err
				}
				result := describeOutcome(outcome)
				tally[result]++
				fmt.Fprintf(out, "game %d: %s\n", i, result)
				printBoard(out, board)
			}
			fmt.Fprintf(out, "tally: X=%d O=%d draw=%d\n", tally["X wins"], tally["O wins"], tally["draw"])
			return nil
		},
	}

	cmd.Flags().IntVarP(&games, "games", "n", 1, "Number of games to play")
	cmd.Flags().IntVar(&xLevel, "x-level", -1, "Level for X, defaults to --level")
	cmd.Flags().IntVar(&oLevel, "o-level", -1, "Level for O, defaults to --level")

	return cmd
}

// playOut plays x against o from an empty board.
func playOut(x, o *engine.Engine) (domain.Outcome, domain.Board, error) {
	g := domain.NewGame()
	for !g.Over() {
		player := o
		if g.Turn == domain.PlayerOne {
			player = x
		}
		m, err := player.ChooseMove(g.Board)
		if err != nil {
			return domain.Outcome{}, g.Board, err
		}
		if err := g.Play(m); err != nil {
			return domain.Outcome{}, g.Board, err
		}
	}
	return g.Outcome, g.Board, nil
}
