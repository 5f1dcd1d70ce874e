package logger

import (
	"fmt"
)

// Logging levels
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Environments; dev logs text, production logs JSON
const (
	EnvDevelopment = "dev"
	EnvProduction  = "prod"
)

// Logger interface defines the logging contract
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

// New creates a logger for the given environment and level
func New(environment string, level string) (Logger, error) {
	switch environment {
	case EnvDevelopment:
		return NewTextLogger(level), nil
	case EnvProduction:
		return NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("unknown environment %q", environment)
	}
}
