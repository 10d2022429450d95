package zap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFmt = "2006/01/02 15:04:05.000"

const (
	Dev Mode = iota
	Prod
)

type Mode int32

// Config 日志配置；Prod 或 File 为 true 时额外写滚动文件
type Config struct {
	Mode  Mode
	Level string
	App   string
	Dir   string
	File  bool
	// MaxSizeMB 单文件上限，默认 100
	MaxSizeMB int
	// MaxBackups 保留份数，默认 7
	MaxBackups int
}

// Logger 把 kratos 的键值日志转给 zap
type Logger struct {
	log    *zap.Logger
	msgKey string
}

var _ log.Logger = (*Logger)(nil)

// Option is logger option.
type Option func(*Logger)

// Log implements log.Logger
func (l *Logger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "!MISSING-VALUE")
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == l.msgKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	if ce := l.log.Check(zapLevel(level), msg); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func zapLevel(level log.Level) zapcore.Level {
	switch level {
	case log.LevelDebug:
		return zapcore.DebugLevel
	case log.LevelWarn:
		return zapcore.WarnLevel
	case log.LevelError:
		return zapcore.ErrorLevel
	case log.LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.log.Sync()
}

// ZapLogger returns the underlying zap logger.
func (l *Logger) ZapLogger() *zap.Logger {
	return l.log
}

// WithMessageKey with message key.
func WithMessageKey(key string) Option {
	return func(l *Logger) {
		l.msgKey = key
	}
}

// NewLogger creates a new logger.
func NewLogger(zapLogger *zap.Logger, opts ...Option) *Logger {
	l := &Logger{
		log:    zapLogger,
		msgKey: log.DefaultMessageKey,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewLoggerWithConfig creates a new logger from config with options.
func NewLoggerWithConfig(cfg *Config, opts ...Option) *Logger {
	return NewLogger(NewZapLogger(cfg), opts...)
}

// NewZapLogger creates a new zap logger from config.
func NewZapLogger(cfg *Config) *zap.Logger {
	if cfg == nil {
		_, _ = fmt.Fprintln(os.Stderr, "logger: using default development logger with nil config")
		cfg = &Config{Mode: Dev, Level: "debug"}
	}
	c := *cfg
	if c.App == "" {
		c.App = "app"
	}
	lv := zap.NewAtomicLevel()
	if err := lv.UnmarshalText([]byte(c.Level)); err != nil {
		_ = lv.UnmarshalText([]byte("debug"))
		_, _ = fmt.Fprintf(os.Stderr, "logger: invalid log level %q, defaulting to DEBUG\n", c.Level)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg(c.Mode == Dev)),
			zapcore.Lock(os.Stdout),
			lv,
		),
	}
	if c.File || c.Mode == Prod {
		name := filepath.Join(c.Dir, c.App)
		cores = append(cores,
			fileCore(name+".log", lv, c),
			fileCore(name+"_error.log", zap.ErrorLevel, c),
		)
	}
	// kratos Helper 多包一层
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2))
}

func fileCore(file string, lv zapcore.LevelEnabler, c Config) zapcore.Core {
	w := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    orDefault(c.MaxSizeMB, 100),
		MaxBackups: orDefault(c.MaxBackups, 7),
		MaxAge:     10,
		Compress:   true,
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg(false)),
		zapcore.AddSync(w),
		lv,
	)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func encCfg(color bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + t.Format(timeFmt) + "]")
	}
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.ConsoleSeparator = " "
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg
}
