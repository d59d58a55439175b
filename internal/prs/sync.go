/*
NAME
  sync.go

DESCRIPTION
  sync.go implements phase-reference-symbol synchronisation: correlating
  the received PRS against the two known reference symbols to recover
  carrier frequency offset and symbol timing, and tracking lock state
  across consecutive PRS observations.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package prs synchronises to the DAB phase reference symbol: frequency
// and timing offset estimation via FFT correlation, and lock-state
// tracking for the front-end's AFC and timing control loops.
package prs

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/dabreceiver/dab/internal/tables"
)

const numCarriers = tables.NumCarriers

// lockConsecutive is the number of consecutive in-tolerance observations
// required before declaring lock.
const lockConsecutive = 3

// Estimate is one PRS correlation result.
type Estimate struct {
	FreqOffset      float64 // c: fractional carrier spacing offset
	TimingOffset    float64 // ir: instantaneous sample timing offset
	AvgTimingOffset float64 // 8-tap running mean of ir, used by the DAC tracking loop
	Locked          bool
}

// Synchroniser tracks PRS correlation state across successive symbols.
type Synchroniser struct {
	locked   bool
	count    int
	avg      runningAverage
	// Probe, if set, is invoked once per PRS observation with
	// |FFT(rdata)|/2048, where rdata is the observation's inverse FFT;
	// used by internal/prsdebug, matching the reference
	// receiver's visualiser hook (SPEC_FULL.md, Supplemented Features #1).
	Probe func(mag [numCarriers]float64)
}

// NewSynchroniser returns an unlocked synchroniser.
func NewSynchroniser() *Synchroniser {
	return &Synchroniser{count: lockConsecutive}
}

// TrySync correlates one received PRS (2048 complex time-domain samples)
// against the known reference symbols and updates lock state.
func (s *Synchroniser) TrySync(rxSymbol [numCarriers]complex128) Estimate {
	rdata := ifft(rxSymbol)

	c, prs2Offset := s.calcC(rdata)
	ir := s.calcIR(prs2Offset, rxSymbol)

	if s.Probe != nil {
		var mag [numCarriers]float64
		md := fft.FFT(complexSlice(rdata[:]))
		for i, v := range md {
			mag[i] = cmplxAbs(v) / numCarriers
		}
		s.Probe(mag)
	}

	inTolerance := math.Abs(c) < 1.23046875e-4 && math.Abs(ir) < 350
	if inTolerance {
		if s.count > 0 {
			s.count--
		}
		if s.count == 0 {
			s.locked = true
		}
	} else {
		s.count = lockConsecutive
		s.locked = false
	}

	avgIR := s.avg.push(ir)

	return Estimate{FreqOffset: c, TimingOffset: ir, AvgTimingOffset: avgIR, Locked: s.locked}
}

func (s *Synchroniser) calcC(rdata [numCarriers]complex128) (float64, int) {
	window := 1
	center := 0
	if !s.locked {
		window = 25
		center = 12
	}
	var best float64
	var bestShift int
	for w := 0; w < window; w++ {
		shift := w - center
		shifted := shiftSymbol(tables.PRS1, shift)
		cdata := mulConj(rdata, shifted, 1024.0)
		mdata := fft.FFT(complexSlice(cdata[:]))
		mag := magnitude(mdata)
		max, idx := maxExtent(mag)
		if mean(mag)*12 > max {
			max = 0
		}
		if max > best {
			best = max
			bestShift = idx
		}
	}
	indexed := foldSigned(bestShift)
	c := 4.8828125e-7 * float64(indexed)
	return c, bestShift
}

func (s *Synchroniser) calcIR(prs2Offset int, idata [numCarriers]complex128) float64 {
	shifted := shiftSymbol(tables.PRS2, prs2Offset)
	mdata := mulConj(idata, shifted, 32.0)
	rdata := fft.FFT(complexSlice(mdata[:]))
	mag := magnitude(rdata)
	max, idx := maxExtent(mag)
	if mean(mag)*14 > max {
		max = 0
	}
	return float64(foldSigned(idx))
}

func shiftSymbol(sym [numCarriers]complex128, shift int) [numCarriers]complex128 {
	var out [numCarriers]complex128
	for i := range sym {
		j := ((i+shift)%numCarriers + numCarriers) % numCarriers
		out[j] = sym[i]
	}
	return out
}

func mulConj(a, b [numCarriers]complex128, scale float64) [numCarriers]complex128 {
	var out [numCarriers]complex128
	for i := range a {
		out[i] = a[i] * cmplxConj(b[i]) / complex(scale, 0)
	}
	return out
}

func cmplxConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func magnitude(data []complex128) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = cmplxAbs(v) / float64(len(data))
	}
	return out
}

func mean(data []float64) float64 {
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func maxExtent(data []float64) (float64, int) {
	var max float64
	var idx int
	for i, v := range data {
		if v > max {
			max = v
			idx = i
		}
	}
	return max, idx
}

func foldSigned(v int) int {
	if v > numCarriers/2 {
		return v - numCarriers
	}
	return v
}

func ifft(sym [numCarriers]complex128) [numCarriers]complex128 {
	out := fft.IFFT(complexSlice(sym[:]))
	var res [numCarriers]complex128
	copy(res[:], out)
	return res
}

func complexSlice(a []complex128) []complex128 {
	return a
}

// runningAverage is an 8-tap running mean that resets whenever the
// timing estimate jumps out of tolerance, matching the reference AFC
// loop's RAverage.
type runningAverage struct {
	buf [8]float64
	n   int
	pos int
	full bool
}

func (r *runningAverage) push(v float64) float64 {
	if math.Abs(v) > 350 {
		r.n = 0
		r.pos = 0
		r.full = false
	}
	r.buf[r.pos] = v
	r.pos++
	if r.pos >= len(r.buf) {
		r.pos = 0
		r.full = true
	}
	if !r.full {
		r.n = r.pos
	} else {
		r.n = len(r.buf)
	}
	var sum float64
	for i := 0; i < r.n; i++ {
		sum += r.buf[i]
	}
	if r.n == 0 {
		return 0
	}
	return sum / float64(r.n)
}
