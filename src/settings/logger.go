package settings

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the library logger. Debug settings get a development
// config writing to stdout, everything else the production config.
func NewLogger(s *Settings) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if s.Debug {
		// Development configuration with more verbose output
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		if !s.Verbose {
			z.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
		logger, err = z.Build()
	} else {
		logger, err = zap.NewProduction()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger.Sugar().Named("minimongo"), nil
}
