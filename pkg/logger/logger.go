// Copyright 2023 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logger holds the process-wide zap logger used by the rkotp
// packages. Set RKOTP_LOG_FILE to additionally log JSON records to a file.
package logger

import (
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	LogContainer     logContainer
	loggerInit       sync.Once
	simpleLoggerInit sync.Once
)

type logContainer struct {
	logger       *zap.Logger
	simpleLogger *zap.SugaredLogger
}

// GetLogger returns the pointer to the logger and creates one if none exists
func (l *logContainer) GetLogger() *zap.Logger {
	loggerInit.Do(func() {
		l.logger = zap.New(getCore())
	})
	return l.logger
}

// GetSimpleLogger returns the pointer to the sugared logger and creates one
// if none exists
func (l *logContainer) GetSimpleLogger() *zap.SugaredLogger {
	simpleLoggerInit.Do(func() {
		l.simpleLogger = zap.New(getCore()).Sugar()
	})
	return l.simpleLogger
}

func getConsoleEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getJSONEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func getCore() zapcore.Core {
	console := zapcore.NewCore(getConsoleEncoder(), zapcore.AddSync(os.Stderr), zapcore.InfoLevel)
	path := os.Getenv("RKOTP_LOG_FILE")
	if path == "" {
		return console
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("unable to create logfile: %v", err)
	}
	file := zapcore.NewCore(getJSONEncoder(), zapcore.AddSync(f), zapcore.InfoLevel)
	return zapcore.NewTee(console, file)
}
