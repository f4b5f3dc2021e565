// pkg/logger/logger.go

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Уровни логирования
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

// Fields дополнительные поля структурированного лога
type Fields map[string]interface{}

// Options параметры создания логгера
type Options struct {
	Path       string    // файл лога, пустая строка - только консоль
	Level      string    // debug, info, warn, error
	Debug      bool      // цветной вывод в консоль
	MaxSizeMB  int       // размер файла до ротации
	MaxBackups int       // сколько ротированных файлов хранить
	Output     io.Writer // консольный вывод, по умолчанию os.Stdout
}

type Logger struct {
	base    *logrus.Logger
	rotator *lumberjack.Logger
}

// NewLoggerWithOptions создает логгер с ротацией файла через lumberjack
func NewLoggerWithOptions(opts Options) (*Logger, error) {
	console := opts.Output
	if console == nil {
		console = os.Stdout
	}

	base := logrus.New()
	base.SetLevel(parseLevel(opts.Level))
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     opts.Debug && opts.Path == "",
		DisableColors:   !opts.Debug || opts.Path != "",
	})

	l := &Logger{base: base}
	out := console

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 5
		}
		l.rotator = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		out = io.MultiWriter(console, l.rotator)
	}

	base.SetOutput(out)
	return l, nil
}

// parseLevel переводит строковый уровень в уровень logrus, неизвестный уровень = info
func parseLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn, "WARNING":
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelFatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Методы для разных уровней
func (l *Logger) Debug(format string, v ...interface{}) {
	l.base.Debugf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.base.Infof(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.base.Warnf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.base.Errorf(format, v...)
}

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.base.Fatalf(format, v...)
}

// WithFields возвращает запись с контекстными полями
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.base.WithFields(logrus.Fields(fields))
}

// Level текущий уровень логирования
func (l *Logger) Level() string {
	return strings.ToUpper(l.base.GetLevel().String())
}

func (l *Logger) Close() {
	if l.rotator != nil {
		l.rotator.Close()
	}
}
