/*
NAME
  controller.go

DESCRIPTION
  controller.go wraps the Synchroniser with the periodic AFC/timing
  control-output schedule: a frequency-correction register write at most
  every 60ms, a DAC timing-correction write at most every 250ms through
  a saturating accumulator, and a per-observation timing message once
  locked. The exact OUTREG0/DACVALUE bit layouts are not recoverable
  from the retrieved WaveFinder source (init.rs only ever writes
  hardcoded values to these registers), so the encodings below are a
  documented approximation consistent with the threshold/step formulas,
  in the same spirit as the UEP/EEP/puncture-vector table approximations
  elsewhere in this receiver.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package prs

import (
	"math"
	"time"
)

// OUTREG0 and DACVALUE are the tuner register addresses the AFC/timing
// loop writes to.
const (
	OutReg0Addr  = 0xC01E
	DacValueAddr = 0x0366
)

const (
	freqWritePeriod = 60 * time.Millisecond
	dacWritePeriod  = 250 * time.Millisecond

	freqOffsetTicksPerUnit = 8192000.0 // c*8192000 must reach 1 tick to write
	dacOffsetThreshold     = 75.0      // |avg_ir| above which the DAC is nudged
	dacBigStepOffset       = 350.0     // |avg_ir| above which the step is proportional
	dacBigStepGain         = 2.2e-5
	dacSmallStep           = 1.0 / 4096.0
	dacFullScale           = 65536.0
)

// ControlPlan is the set of control messages the AFC/timing loop wants
// sent after one PRS observation.
type ControlPlan struct {
	Estimate Estimate

	SendFreqWrite bool
	FreqRegister  uint16

	SendDACWrite bool
	DACRegister  uint16

	// SendTiming is true once locked: the front end gets a timing
	// message on every PRS cycle while synchronised.
	SendTiming bool
}

// Controller drives a Synchroniser and turns its estimates into a
// scheduled sequence of control-plane writes.
type Controller struct {
	sync *Synchroniser

	lastFreqWrite time.Time
	lastDACWrite  time.Time
	dacAccum      uint16
}

// NewController returns a Controller wrapping the given Synchroniser,
// with the DAC accumulator centred at mid-scale.
func NewController(s *Synchroniser) *Controller {
	return &Controller{sync: s, dacAccum: 0x8000}
}

// Observe runs one PRS cycle's symbol through the synchroniser and
// decides which control messages, if any, should be sent. now is
// supplied by the caller so the 60ms/250ms schedules are testable
// without real wall-clock delay.
func (c *Controller) Observe(now time.Time, rx [numCarriers]complex128) ControlPlan {
	est := c.sync.TrySync(rx)
	plan := ControlPlan{Estimate: est}
	if !est.Locked {
		return plan
	}
	plan.SendTiming = true

	if now.Sub(c.lastFreqWrite) >= freqWritePeriod {
		if ticks := est.FreqOffset * freqOffsetTicksPerUnit; math.Abs(ticks) >= 1 {
			plan.SendFreqWrite = true
			plan.FreqRegister = encodeFreqOffset(ticks)
			c.lastFreqWrite = now
		}
	}

	if now.Sub(c.lastDACWrite) >= dacWritePeriod {
		if math.Abs(est.AvgTimingOffset) > dacOffsetThreshold {
			c.dacAccum = stepDAC(c.dacAccum, est.AvgTimingOffset)
			plan.SendDACWrite = true
			plan.DACRegister = c.dacAccum
			c.lastDACWrite = now
		}
	}

	return plan
}

// encodeFreqOffset packs a tick count into an 8-bit signed offset plus a
// high-byte "apply" flag: register = flag<<8 | uint8(int8(ticks)),
// saturating ticks to an int8's range.
func encodeFreqOffset(ticks float64) uint16 {
	rounded := math.Round(ticks)
	if rounded > 127 {
		rounded = 127
	}
	if rounded < -128 {
		rounded = -128
	}
	return 0x0100 | uint16(uint8(int8(rounded)))
}

// stepDAC nudges the saturating 16-bit DAC accumulator by a step sized
// per the avg_ir magnitude: proportional once |ir| exceeds
// dacBigStepOffset, else a fixed minimum step. The low two bits of the
// result are always cleared, matching the register's documented
// granularity.
func stepDAC(reg uint16, avgIR float64) uint16 {
	stepFraction := dacSmallStep
	if math.Abs(avgIR) > dacBigStepOffset {
		stepFraction = dacBigStepGain * math.Abs(avgIR)
	}
	delta := int32(math.Round(stepFraction * dacFullScale))
	if avgIR < 0 {
		delta = -delta
	}
	next := int32(reg) + delta
	if next < 0 {
		next = 0
	}
	if next > 0xFFFF {
		next = 0xFFFF
	}
	return uint16(next) &^ 0x3
}
