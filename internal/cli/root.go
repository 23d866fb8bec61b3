package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaminalder/tictactoe-minimax/internal/engine"
)

// env is shared by the subcommands; logger is set once flags are parsed.
type env struct {
	cfg    *Config
	logger *slog.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := DefaultConfig()
	e := &env{cfg: cfg, logger: slog.Default()}

	rootCmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe engine tooling",
		Long: `tictactoe drives the minimax engine from the command line.

It can pit the engine against itself, suggest a move for a given board,
or replay a scripted game against the automated player.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			lvl, err := cfg.SlogLevel()
			if err != nil {
				return err
			}
			e.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().IntVarP(&cfg.Level, "level", "l", cfg.Level, "Engine level: 0 random, 1+ minimax (env: TICTACTOE_LEVEL)")
	rootCmd.PersistentFlags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Seed for the random level, 0 for crypto random (env: TICTACTOE_SEED)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error (env: TICTACTOE_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Pruning, "pruning", cfg.Pruning, "Enable alpha-beta pruning")
	rootCmd.PersistentFlags().BoolVar(&cfg.Parallel, "parallel", cfg.Parallel, "Search root moves concurrently")

	rootCmd.AddCommand(newSelfPlayCmd(e))
	rootCmd.AddCommand(newBestMoveCmd(e))
	rootCmd.AddCommand(newPlayCmd(e))

	return rootCmd
}

func (e *env) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithLevel(engine.Level(e.cfg.Level)),
		engine.WithPruning(e.cfg.Pruning),
		engine.WithParallelRoot(e.cfg.Parallel),
		engine.WithLogger(e.logger),
	}
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
