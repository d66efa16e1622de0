// Package logging builds the application's zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a development logger when debug is set and a JSON production
// logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %v", err)
	}
	return logger, nil
}

// Component returns a named sugared child logger. A nil base yields a no-op
// logger.
func Component(base *zap.Logger, name string) *zap.SugaredLogger {
	if base == nil {
		return zap.NewNop().Sugar()
	}
	return base.Named(name).Sugar()
}
