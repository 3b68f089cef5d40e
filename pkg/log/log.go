package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields map[string]any

type Logger struct {
	newLogger *zap.Logger
	fields    Fields
}

// EncodeType 日志输出类型，支持控制台和json格式
type EncodeType int

const (
	// EncodeTypeConsole 控制台输出
	EncodeTypeConsole EncodeType = iota
	// EncodeTypeJson json输出
	EncodeTypeJson
)

type Option struct {
	Mode        string
	ServiceName string
	EncodeType  EncodeType
}

var (
	GlobalLogger *Logger
	once         sync.Once
)

func NewLogger(opt *Option) *Logger {
	once.Do(func() {
		GlobalLogger = newLogger(opt)
	})
	return GlobalLogger
}

func newLogger(opt *Option) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "service",
		CallerKey:     "tag",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime: func(t time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(t.Format("2006-01-02 15:04:05"))
		},
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.FullCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	// 由于再次封装日志，因此需要打印上一级的调用
	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(2)}

	var encoder zapcore.Encoder
	if opt.EncodeType == EncodeTypeConsole {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}
	writeSyncer := zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout))

	if opt.Mode == "debug" || opt.Mode == "test" {
		core := zapcore.NewCore(encoder, writeSyncer, zap.DebugLevel)
		opts = append(opts, zap.Development())
		return &Logger{newLogger: zap.New(core, opts...).Named(opt.ServiceName)}
	}

	atomicLevel := zap.NewAtomicLevel()
	atomicLevel.SetLevel(zap.InfoLevel)
	core := zapcore.NewCore(encoder, writeSyncer, atomicLevel)

	return &Logger{newLogger: zap.New(core, opts...).Named(opt.ServiceName)}
}

func (l *Logger) clone() *Logger {
	nl := *l
	return &nl
}

func (l *Logger) WithFields(f Fields) *Logger {
	ll := l.clone()
	if ll.fields == nil {
		ll.fields = make(Fields)
	}
	for k, v := range f {
		ll.fields[k] = v
	}
	return ll
}

func (l *Logger) print(level zapcore.Level, msg string) {
	var fields []zap.Field
	if l.fields != nil {
		fields = append(fields, zap.Any("field", l.fields))
	}
	switch level {
	case zapcore.DebugLevel:
		l.newLogger.Debug(msg, fields...)
	case zapcore.InfoLevel:
		l.newLogger.Info(msg, fields...)
	case zapcore.WarnLevel:
		l.newLogger.Warn(msg, fields...)
	case zapcore.ErrorLevel:
		l.newLogger.Error(msg, fields...)
	case zapcore.FatalLevel:
		l.newLogger.Fatal(msg, fields...)
	}
}

func (l *Logger) Debug(msg string) { l.print(zapcore.DebugLevel, msg) }

func (l *Logger) Debugf(format string, v ...any) {
	l.print(zapcore.DebugLevel, fmt.Sprintf(format, v...))
}

func (l *Logger) Info(msg string) { l.print(zapcore.InfoLevel, msg) }

func (l *Logger) Infof(format string, v ...any) {
	l.print(zapcore.InfoLevel, fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(msg string) { l.print(zapcore.WarnLevel, msg) }

func (l *Logger) Warnf(format string, v ...any) {
	l.print(zapcore.WarnLevel, fmt.Sprintf(format, v...))
}

func (l *Logger) Error(msg string) { l.print(zapcore.ErrorLevel, msg) }

func (l *Logger) Errorf(format string, v ...any) {
	l.print(zapcore.ErrorLevel, fmt.Sprintf(format, v...))
}

func (l *Logger) Fatal(msg string) { l.print(zapcore.FatalLevel, msg) }

func (l *Logger) Fatalf(format string, v ...any) {
	l.print(zapcore.FatalLevel, fmt.Sprintf(format, v...))
}
