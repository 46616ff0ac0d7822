package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Production gets JSON output, everything else the console encoder.
func New(isProduction bool, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if isProduction {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return log.With(zap.String("service", "shareit")), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
