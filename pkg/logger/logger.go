// Package logger builds the zap loggers injected into collections and the
// CLI.
package logger

import (
	"go.uber.org/zap"
)

// New returns a sugared production logger, or a development one when debug
// is set.
func New(debug bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Nop returns a logger that discards everything; the default for
// collections constructed without WithLogger.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
