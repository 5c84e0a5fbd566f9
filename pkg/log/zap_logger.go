/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package log

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chassis/openlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	StdoutSyncer = zapcore.Lock(os.Stdout)
	StderrSyncer = zapcore.Lock(os.Stderr)

	zapLevelMap = map[string]zapcore.Level{
		"DEBUG": zap.DebugLevel,
		"INFO":  zap.InfoLevel,
		"WARN":  zap.WarnLevel,
		"ERROR": zap.ErrorLevel,
		"FATAL": zap.FatalLevel,
	}
)

func toZapCore(c Config, fallback zapcore.WriteSyncer) zapcore.Core {
	l, ok := zapLevelMap[strings.ToUpper(c.LoggerLevel)]
	if !ok {
		l = zap.DebugLevel
	}
	var levelEnabler zap.LevelEnablerFunc = func(level zapcore.Level) bool {
		return level >= l
	}

	format := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if c.NoCaller {
		format.CallerKey = ""
	}
	if c.NoLevel {
		format.LevelKey = ""
	}
	if c.NoTime {
		format.TimeKey = ""
	}
	var enc zapcore.Encoder
	if c.LogFormatText {
		enc = zapcore.NewConsoleEncoder(format)
	} else {
		enc = zapcore.NewJSONEncoder(format)
	}

	syncer := fallback
	if len(c.LoggerFile) > 0 {
		syncer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.LoggerFile,
			MaxSize:    c.LogRotateSize,
			MaxBackups: c.LogBackupCount,
			MaxAge:     c.LogBackupAge,
			LocalTime:  true,
			Compress:   true,
		})
	}
	return zapcore.NewCore(enc, syncer, levelEnabler)
}

// ZapLogger writes through zap and satisfies openlog.Logger, so the
// libraries logging via openlog end up in the same sink.
type ZapLogger struct {
	Config Config

	zapLogger *zap.Logger
}

func (l *ZapLogger) Debug(msg string, opts ...openlog.Option) {
	l.zapLogger.Debug(msg, toFields(opts)...)
}

func (l *ZapLogger) Info(msg string, opts ...openlog.Option) {
	l.zapLogger.Info(msg, toFields(opts)...)
}

func (l *ZapLogger) Warn(msg string, opts ...openlog.Option) {
	l.zapLogger.Warn(msg, toFields(opts)...)
}

func (l *ZapLogger) Error(msg string, opts ...openlog.Option) {
	l.zapLogger.Error(msg, toFields(opts)...)
}

// Fatal panics instead of exiting so deferred Stop/deregister still run.
func (l *ZapLogger) Fatal(msg string, opts ...openlog.Option) {
	l.zapLogger.Panic(msg, toFields(opts)...)
}

// Recover callerSkip equals to 0 identify the caller of Recover()
func (l *ZapLogger) Recover(r interface{}, callerSkip int) {
	e := zapcore.Entry{
		Level:  zap.PanicLevel,
		Time:   time.Now(),
		Caller: zapcore.NewEntryCaller(runtime.Caller(callerSkip + 1)),
		Stack:  zap.Stack("stack").String,
	}
	fmt.Fprintf(StderrSyncer, "%s\tPANIC\t%s\t%s\n%v\n",
		e.Time.Format("2006-01-02T15:04:05.000Z0700"),
		e.Caller.TrimmedPath(),
		r,
		e.Stack)
	_ = StderrSyncer.Sync()
	if err := l.zapLogger.Core().With([]zap.Field{zap.Reflect("recover", r)}).Write(e, nil); err != nil {
		fmt.Fprintf(StderrSyncer, "%s\tERROR\t%v\n", time.Now().Format("2006-01-02T15:04:05.000Z0700"), err)
		fmt.Fprintln(StderrSyncer, string(debug.Stack()))
		_ = StderrSyncer.Sync()
	}
}

func (l *ZapLogger) Sync() {
	_ = l.zapLogger.Sync()
	_ = StderrSyncer.Sync()
	_ = StdoutSyncer.Sync()
}

func toFields(opts []openlog.Option) []zap.Field {
	if len(opts) == 0 {
		return nil
	}
	options := openlog.ToOptions(opts...)
	if options.Err == nil {
		return nil
	}
	return []zap.Field{zap.String("error", options.Err.Error())}
}

func NewZapLogger(cfg Config) *ZapLogger {
	return newZapLogger(cfg, StdoutSyncer)
}

func newZapLogger(cfg Config, out zapcore.WriteSyncer) *ZapLogger {
	opts := []zap.Option{zap.ErrorOutput(StderrSyncer)}
	if !cfg.NoCaller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(cfg.CallerSkip))
	}
	l := zap.New(toZapCore(cfg, out), opts...)
	if cfg.ReplaceGlobals {
		_ = zap.ReplaceGlobals(l)
	}
	return &ZapLogger{
		Config:    cfg,
		zapLogger: l,
	}
}
