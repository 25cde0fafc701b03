// Package logging builds the process logger and scrubs sensitive values
// before they reach log output. Sampled source records routinely carry PII
// such as customer email addresses.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger constructs the process logger. Local environments get the
// human-readable development encoder; everything else logs JSON at Info.
func NewLogger(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
