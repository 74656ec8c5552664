package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes GORM's SQL traces into the zap sink.
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger builds a GORM logger; level is one of silent, error, warn, info.
func NewGormLogger(level string) *GormLogger {
	l := gormlogger.Warn
	switch level {
	case "silent":
		l = gormlogger.Silent
	case "error":
		l = gormlogger.Error
	case "info":
		l = gormlogger.Info
	}
	return &GormLogger{level: l, slowThreshold: 500 * time.Millisecond}
}

func (g *GormLogger) zap() *zap.Logger {
	return L().WithOptions(zap.AddCallerSkip(3)).Named("gorm")
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.zap().Info(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.zap().Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.zap().Error(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		// duplicate keys are expected during set numbering retries
		g.zap().Warn("sql error",
			zap.Error(err), zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	case elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.zap().Warn("slow sql",
			zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.zap().Debug("sql",
			zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	}
}
