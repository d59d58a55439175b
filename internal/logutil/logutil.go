/*
NAME
  logutil.go

DESCRIPTION
  logutil.go defines the narrow Logger interface used throughout this
  module (mirroring revid.Logger) and a concrete adapter over
  github.com/charmbracelet/log for the CLI.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package logutil provides the Logger interface used across the receiver
// and a concrete console implementation.
package logutil

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Severity levels, matching the conventions used by revid.Logger.
const (
	Debug int8 = iota
	Info
	Warning
	Error
	Fatal
)

// Logger is implemented by anything the receiver can log through.
type Logger interface {
	SetLevel(level int8)
	Log(level int8, msg string, params ...interface{})
}

// Charm adapts github.com/charmbracelet/log to Logger.
type Charm struct {
	l *charmlog.Logger
}

// NewCharm returns a Logger backed by a charmbracelet/log console logger.
func NewCharm() *Charm {
	return &Charm{l: charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})}
}

// SetLevel adjusts the minimum severity logged.
func (c *Charm) SetLevel(level int8) {
	switch level {
	case Debug:
		c.l.SetLevel(charmlog.DebugLevel)
	case Info:
		c.l.SetLevel(charmlog.InfoLevel)
	case Warning:
		c.l.SetLevel(charmlog.WarnLevel)
	default:
		c.l.SetLevel(charmlog.ErrorLevel)
	}
}

// Log emits one message at the given severity with key/value params.
func (c *Charm) Log(level int8, msg string, params ...interface{}) {
	switch {
	case level >= Fatal:
		c.l.Fatal(msg, params...)
	case level >= Error:
		c.l.Error(msg, params...)
	case level >= Warning:
		c.l.Warn(msg, params...)
	case level >= Info:
		c.l.Info(msg, params...)
	default:
		c.l.Debug(msg, params...)
	}
}
