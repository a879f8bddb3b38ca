package logger

import "go.uber.org/zap"

// NewNoopLogger returns a logger that discards everything. Used in tests.
func NewNoopLogger() *ZapLogger {
	return &ZapLogger{
		logger: zap.NewNop(),
	}
}
