package logger

import (
	"fmt"
	"io"
	"os"

	"esports-scoreboard/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	return newLogger(os.Stdout, zerolog.DebugLevel)
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(level)
}

// Configure applies LOG_LEVEL once config is loaded. The root logger is
// built before config so config loading itself can log; the global level
// caps every logger derived from it.
func Configure(cfg *config.Config, logger zerolog.Logger) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	logger.Info().Str("level", level.String()).Msg("log level set")
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(Configure),
)
