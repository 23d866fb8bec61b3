package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/engine"
)

func newPlayCmd(e *env) *cobra.Command {
	var (
		moves   []string
		markStr string
		pvp     bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Replay scripted human moves against the engine",
		Example: `  tictactoe play --move 0,0 --move 2,2
  tictactoe play --ai-mark X --move 1,1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			aiMark, err := parseMark(markStr)
			if err != nil {
				return err
			}
			mode := app.ModeAI
			if pvp {
				mode = app.ModePvP
			}
			svc := app.NewService(
				app.WithLogger(e.logger),
				app.WithRandom(e.cfg.Random()),
				app.WithDefaults(engine.Level(e.cfg.Level), aiMark, mode),
				app.WithEngineOptions(engine.WithPruning(e.cfg.Pruning), engine.WithParallelRoot(e.cfg.Parallel)),
			)

			out := cmd.OutOrStdout()
			st, err := svc.CreateGame()
			if err != nil {
				return err
			}
			if st.LastAI != nil {
				fmt.Fprintf(out, "ai %d,%d\n", st.LastAI.Row, st.LastAI.Col)
				printBoard(out, st.Game.Board)
			}
			for _, raw := range moves {
				m, err := parseMove(raw)
				if err != nil {
					return err
				}
				st, err = svc.Play(st.ID, m)
				if err != nil {
					return fmt.Errorf("move %s: %w", raw, err)
				}
				line := fmt.Sprintf("human %d,%d", m.Row, m.Col)
				if st.LastAI != nil {
					line += fmt.Sprintf(" -> ai %d,%d", st.LastAI.Row, st.LastAI.Col)
				}
				fmt.Fprintln(out, line)
				printBoard(out, st.Game.Board)
			}
			fmt.Fprintf(out, "result: %s\n", describeOutcome(st.Game.Outcome))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&moves, "move", nil, "Human move as row,col; repeat for each turn")
	cmd.Flags().StringVar(&markStr, "ai-mark", "2", "Mark the engine plays: 1/X or 2/O")
	cmd.Flags().BoolVar(&pvp, "pvp", false, "Disable the engine; moves alternate between both sides")

	return cmd
}

func parseMove(s string) (domain.Move, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return domain.Move{}, fmt.Errorf("invalid move %q: want row,col", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.Move{}, fmt.Errorf("invalid row in %q: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.Move{}, fmt.Errorf("invalid col in %q: %w", s, err)
	}
	return domain.Move{Row: row, Col: col}, nil
}
