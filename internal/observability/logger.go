// Package observability builds the structured loggers used across the portal.
package observability

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Structured field names.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatus        = "status"
	FieldDurationMS    = "duration_ms"
	FieldUserEmail     = "user_email"
	FieldRole          = "role"
	FieldJobID         = "job_id"
	FieldApplicationID = "application_id"
	FieldCandidateID   = "candidate_id"
	FieldEmployerID    = "employer_id"
	FieldStatusID      = "status_id"
	FieldRecipient     = "recipient"
	FieldEvent         = "event"
	FieldCount         = "count"
	FieldError         = "error"
)

// LoggerConfig selects the log encoding and level.
type LoggerConfig struct {
	// Development switches to the console encoder with debug level.
	Development bool
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
}

// NewLogger builds a sugared zap logger.
func NewLogger(cfg LoggerConfig) (*zap.SugaredLogger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Component returns logger tagged with a component name.
func Component(logger *zap.SugaredLogger, name string) *zap.SugaredLogger {
	if logger == nil {
		logger = Nop()
	}
	return logger.With(FieldComponent, name)
}

type requestIDKey struct{}

// WithRequestID stores a request id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns logger annotated with the request id in ctx, if any.
func FromContext(ctx context.Context, logger *zap.SugaredLogger) *zap.SugaredLogger {
	if id := RequestID(ctx); id != "" {
		return logger.With(FieldRequestID, id)
	}
	return logger
}
