// Package logging builds the application logger per environment.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// InitLogger creates a zap logger for the given environment. Production
// environments get structured JSON output; everything else gets the
// human-readable development console.
func InitLogger(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if env == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.With(zap.String("environment", env)), nil
}
