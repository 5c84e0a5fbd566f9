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

// Package log is the process wide logger of the eureka client.
package log

import (
	"sync/atomic"

	"github.com/go-chassis/openlog"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Value

func init() {
	Init(Configure())
}

// Init renews the global logger and hands it to openlog as well.
func Init(cfg Config) {
	if len(cfg.LoggerLevel) == 0 {
		cfg.LoggerLevel = defaultLogLevel
	}
	setLogger(NewZapLogger(cfg))
}

// InitWithSyncer is Init writing to out when no log file is configured,
// it returns the previous logger for Restore.
func InitWithSyncer(cfg Config, out zapcore.WriteSyncer) *ZapLogger {
	if len(cfg.LoggerLevel) == 0 {
		cfg.LoggerLevel = defaultLogLevel
	}
	old := Logger()
	setLogger(newZapLogger(cfg, out))
	return old
}

func Restore(l *ZapLogger) {
	setLogger(l)
}

func setLogger(l *ZapLogger) {
	logger.Store(l)
	openlog.SetLogger(l)
}

func Logger() *ZapLogger {
	return logger.Load().(*ZapLogger)
}

func Debug(msg string) {
	Logger().Debug(msg)
}

func Info(msg string) {
	Logger().Info(msg)
}

func Warn(msg string) {
	Logger().Warn(msg)
}

func Error(msg string, err error) {
	if err == nil {
		Logger().Error(msg)
		return
	}
	Logger().Error(msg, openlog.WithErr(err))
}

func Fatal(msg string, err error) {
	if err == nil {
		Logger().Fatal(msg)
		return
	}
	Logger().Fatal(msg, openlog.WithErr(err))
}

// Recover must be deferred directly by the goroutine to protect.
func Recover() {
	if r := recover(); r != nil {
		Logger().Recover(r, 3)
	}
}

func Sync() {
	Logger().Sync()
}
