package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/engine"
)

func newBestMoveCmd(e *env) *cobra.Command {
	var (
		boardStr string
		markStr  string
	)

	cmd := &cobra.Command{
		Use:   "bestmove",
		Short: "Print the engine's move for a board",
		Example: `  tictactoe bestmove --board "X.O/.X./..." --mark O
  tictactoe bestmove --board "........." --level 0 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := domain.ParseBoard(boardStr)
			if err != nil {
				return err
			}
			mark, err := parseMark(markStr)
			if err != nil {
				return err
			}
			opts := append(e.engineOptions(), engine.WithMark(mark))
			res := engine.New(e.cfg.Random(), opts...).Search(b)
			if !res.HasMove {
				return fmt.Errorf("%w: %s", engine.ErrNoMove, describeOutcome(b.Outcome()))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "move: %d %d\n", res.Move.Row, res.Move.Col)
			if res.Random {
				fmt.Fprintln(out, "score: random")
				return nil
			}
			fmt.Fprintf(out, "score: %d\n", res.Score)
			fmt.Fprintf(out, "nodes: %d\n", res.Nodes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&boardStr, "board", "b", "", "Board as 9 cells of X, O or '.', row-major")
	cmd.Flags().StringVarP(&markStr, "mark", "m", "2", "Mark the engine plays: 1/X or 2/O")
	_ = cmd.MarkFlagRequired("board")

	return cmd
}
