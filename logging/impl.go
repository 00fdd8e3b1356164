package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level zap.AtomicLevel
	core  zapcore.Core

	sugared *zap.SugaredLogger
}

func utcISO8601TimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	zapcore.ISO8601TimeEncoder(t.UTC(), enc)
}

func newImpl(name string, level zap.AtomicLevel, core zapcore.Core) *impl {
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if name != "" {
		zl = zl.Named(name)
	}
	return &impl{name: name, level: level, core: core, sugared: zl.Sugar()}
}

func (imp *impl) sugar() *zap.SugaredLogger {
	return imp.sugared
}

func (imp *impl) Desugar() *zap.Logger {
	return imp.sugar().Desugar()
}

func (imp *impl) SetLevel(level Level) {
	imp.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	return levelFromZap(imp.level.Level())
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	return newImpl(newName, imp.level, imp.core)
}

func (imp *impl) Sync() error {
	return imp.core.Sync()
}

func (imp *impl) Debug(args ...interface{}) {
	imp.sugar().Debug(args...)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.sugar().Debugf(template, args...)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.sugar().Debugw(msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) {
	imp.sugar().Info(args...)
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.sugar().Infof(template, args...)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.sugar().Infow(msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) {
	imp.sugar().Warn(args...)
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.sugar().Warnf(template, args...)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.sugar().Warnw(msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) {
	imp.sugar().Error(args...)
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.sugar().Errorf(template, args...)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.sugar().Errorw(msg, keysAndValues...)
}
