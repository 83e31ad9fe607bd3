package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/ncasuk/ncas-aws-10-software/internal/config"
)

// NewLogger creates the process logger from config and makes it the slog default.
// verbose forces debug level regardless of LOG_LEVEL.
func NewLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return sharedobs.NewLogger(level, cfg.LogFormat)
}
