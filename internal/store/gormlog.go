package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fjacquet/pod-ledger/internal/logging"
)

// gormLogger routes gorm's logging through logging.Logger. SQL traces are
// emitted at debug level only.
type gormLogger struct {
	logger logging.Logger
	level  gormlogger.LogLevel
}

func newGormLogger(logger logging.Logger) gormlogger.Interface {
	return &gormLogger{logger: logger.WithField("component", "gorm"), level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	sql, rows := fc()
	fields := []logging.Field{
		logging.F("sql", sql),
		logging.F("rows", rows),
		logging.F(logging.FieldDuration, time.Since(begin).String()),
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.logger.WithError(err).Debug("Query failed", fields...)
		return
	}
	l.logger.Debug("Query", fields...)
}
