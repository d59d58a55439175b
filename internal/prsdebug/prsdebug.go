/*
NAME
  prsdebug.go

DESCRIPTION
  prsdebug.go is a diagnostic PRS probe: it windows and FFTs every phase
  reference symbol the synchroniser observes and logs coarse magnitude
  statistics, standing in for the reference receiver's live visualiser
  without pulling in a GUI dependency (SPEC_FULL.md, Supplemented
  Features #1).

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package prsdebug provides an optional diagnostic hook into the PRS
// synchroniser for logging carrier magnitude statistics.
package prsdebug

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/dabreceiver/dab/internal/logutil"
)

// Probe computes and logs FFT magnitude statistics for each PRS capture
// it's handed.
type Probe struct {
	log   logutil.Logger
	count int
}

// NewProbe returns a Probe that logs through the given Logger.
func NewProbe(log logutil.Logger) *Probe {
	return &Probe{log: log}
}

// Observe is called once per PRS observation with the magnitude array
// the synchroniser passes to its Probe (see prs.Synchroniser.Probe).
func (p *Probe) Observe(mag [2048]float64) {
	p.count++
	windowed := make([]float64, len(mag))
	w := window.Hamming(len(mag))
	for i, v := range mag {
		windowed[i] = v * w[i]
	}
	spectrum := fft.FFTReal(windowed)

	var peak float64
	var peakIdx int
	var sum float64
	for i, c := range spectrum {
		m := math.Hypot(real(c), imag(c))
		sum += m
		if m > peak {
			peak = m
			peakIdx = i
		}
	}
	mean := sum / float64(len(spectrum))

	p.log.Log(0, "prs probe", "n", p.count, "peak", peak, "peakCarrier", peakIdx, "mean", mean)
}
