package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jupiter-deploy/internal/config"
)

// Logger wraps zap with helpers for the pipeline stage lifecycle.
type Logger struct {
	*zap.Logger
}

// New builds a logger from LOG_LEVEL and LOG_FORMAT. The json format is the
// production encoder; console is the development one.
func New(cfg config.LoggingConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "logger: parse level %q", cfg.Level)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := zapCfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "logger: build")
	}
	return &Logger{Logger: zl}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// With returns a child logger carrying the extra fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

func (l *Logger) StageStart(stage string) {
	l.Info("stage started", zap.String("stage", stage))
}

func (l *Logger) StageDone(stage string) {
	l.Info("stage completed", zap.String("stage", stage))
}

func (l *Logger) StageFailed(stage string, err error) {
	l.Error("stage failed", zap.String("stage", stage), zap.Error(err))
}
