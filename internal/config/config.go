/*
NAME
  config.go

DESCRIPTION
  config.go holds the receiver's tunables, bound to command line flags in
  cmd/dabrx exactly as revid/config does it: exported fields, a Defaults
  constructor, and stdlib flag.* bindings at the call site.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package config holds the receiver's runtime configuration.
package config

// Source identifies where raw receiver buffers come from.
type Source string

const (
	SourceFile       Source = "file"
	SourceWavefinder Source = "wavefinder"
)

// Config carries every receiver tunable.
type Config struct {
	// Input selects the raw buffer source.
	Input Source
	// InputPath is the replay file path, used when Input is SourceFile.
	InputPath string
	// FrequencyMHz is the tuned RF frequency, used when Input is
	// SourceWavefinder.
	FrequencyMHz float64
	// ServiceID is the hex service identifier to select once the
	// ensemble is known; empty selects none (FIC-only mode).
	ServiceID string
	// LogLevel is the minimum severity logged.
	LogLevel int8
	// PRSDebug enables the PRS synchroniser's magnitude-spectrum probe.
	PRSDebug bool
}

// Defaults returns a Config with the receiver's default tunables: DAB
// channel 12C (225.648MHz), file replay from "capture.raw".
func Defaults() Config {
	return Config{
		Input:        SourceFile,
		InputPath:    "capture.raw",
		FrequencyMHz: 225.648,
		LogLevel:     1,
	}
}
