// Package logging bridges slog to the logger interfaces of our dependencies.
package logging

import (
	"fmt"
	"log/slog"

	tlog "go.temporal.io/sdk/log"
)

// SlogAdapter exposes a *slog.Logger through go.temporal.io/sdk/log.Logger
// so workflow and activity logs land in the same stream as the rest of the
// process.
type SlogAdapter struct {
	logger *slog.Logger
}

var _ tlog.Logger = (*SlogAdapter)(nil)

// NewSlogAdapter wraps l for use as a Temporal client logger.
func NewSlogAdapter(l *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: l}
}

// With returns an adapter whose entries carry the given key-value pairs.
func (s *SlogAdapter) With(keyvals ...interface{}) *SlogAdapter {
	return &SlogAdapter{logger: s.logger.With(pairs(keyvals)...)}
}

func (s *SlogAdapter) Debug(msg string, keyvals ...interface{}) {
	s.logger.Debug(msg, pairs(keyvals)...)
}

func (s *SlogAdapter) Info(msg string, keyvals ...interface{}) {
	s.logger.Info(msg, pairs(keyvals)...)
}

func (s *SlogAdapter) Warn(msg string, keyvals ...interface{}) {
	s.logger.Warn(msg, pairs(keyvals)...)
}

func (s *SlogAdapter) Error(msg string, keyvals ...interface{}) {
	s.logger.Error(msg, pairs(keyvals)...)
}

// pairs normalizes Temporal-style keyvals into slog arguments. Non-string
// keys are stringified and a trailing dangling value gets a placeholder key,
// mirroring slog's !BADKEY convention.
func pairs(keyvals []interface{}) []any {
	if len(keyvals) == 0 {
		return nil
	}
	args := make([]any, 0, len(keyvals)+1)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 >= len(keyvals) {
			args = append(args, slog.Any("!BADKEY", keyvals[i]))
			break
		}
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		args = append(args, slog.Any(key, keyvals[i+1]))
	}
	return args
}
