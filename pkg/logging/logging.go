// Package logging builds the process logger and scrubs credentials out of
// anything the gateway logs.
package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger. env selects the encoder: "local" gets a
// human-readable development logger, anything else gets production JSON.
// MCP stdio transport owns stdout, so logs always go to stderr.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
