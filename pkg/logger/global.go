// pkg/logger/global.go
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

func init() {
	// До InitGlobalWithOptions пишем в stderr, чтобы ранние ошибки конфигурации не терялись
	globalLogger, _ = NewLoggerWithOptions(Options{Level: LevelInfo, Output: os.Stderr})
}

// InitGlobalWithOptions заменяет глобальный логгер, предыдущий закрывается
func InitGlobalWithOptions(opts Options) error {
	l, err := NewLoggerWithOptions(opts)
	if err != nil {
		return err
	}
	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return nil
}

func GetLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Глобальные методы для удобства
func Debug(format string, v ...interface{}) {
	GetLogger().Debug(format, v...)
}

func Info(format string, v ...interface{}) {
	GetLogger().Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	GetLogger().Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	GetLogger().Error(format, v...)
}

func Fatal(format string, v ...interface{}) {
	GetLogger().Fatal(format, v...)
}

func WithFields(fields Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

func Close() {
	GetLogger().Close()
}
