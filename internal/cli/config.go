package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jaminalder/tictactoe-minimax/internal/dependencies/random"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/engine"
)

// Config holds CLI configuration
type Config struct {
	Level    int
	Seed     uint64
	LogLevel string
	Pruning  bool
	Parallel bool

	// envErr records malformed environment values; Validate reports it.
	envErr error
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	level, levelErr := getEnvInt("TICTACTOE_LEVEL", 1)
	seed, seedErr := getEnvUint("TICTACTOE_SEED", 0)
	return &Config{
		Level:    level,
		Seed:     seed,
		LogLevel: getEnvOrDefault("TICTACTOE_LOG_LEVEL", "warn"),
		envErr:   errors.Join(levelErr, seedErr),
	}
}

// Validate reports malformed environment values and out-of-range settings.
func (c *Config) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	if c.Level < 0 {
		return fmt.Errorf("%w: %d", engine.ErrInvalidLevel, c.Level)
	}
	return nil
}

// Random returns a seeded source when Seed is set and a crypto source otherwise.
func (c *Config) Random() random.Random {
	if c.Seed != 0 {
		return random.NewSeeded(c.Seed)
	}
	return random.New()
}

// SlogLevel parses LogLevel, defaulting to warn.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// parseMark accepts 1/x/X for PlayerOne and 2/o/O for PlayerTwo.
func parseMark(s string) (domain.Cell, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "x":
		return domain.PlayerOne, nil
	case "2", "o":
		return domain.PlayerTwo, nil
	}
	return domain.Empty, fmt.Errorf("invalid mark %q: want 1, 2, X or O", s)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return n, nil
}

func getEnvUint(key string, defaultVal uint64) (uint64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return n, nil
}
