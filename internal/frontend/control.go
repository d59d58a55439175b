/*
NAME
  control.go

DESCRIPTION
  control.go builds the fixed-layout control messages sent to a
  wavefinder-style USB DAB tuner front end: tune requests, timing
  envelopes, and raw register writes.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package frontend

import (
	"encoding/binary"
	"math"
)

// ControlSender is implemented by a Source that can accept tuner control
// messages: retune requests, the selstr/timing envelope that follows
// every PRS lock, and raw register or DAC writes from the AFC loop. A
// replay source (FileSource) does not implement it; the receiver type-
// asserts for it and skips control output when it's absent.
type ControlSender interface {
	SendTune(msg [TuneLen]byte) error
	SendTiming(msg [TimingLen]byte) error
	SendRegisterWrite(msg [RegisterWriteLen]byte) error
}

// TuneLen is the length in bytes of a tune control message.
const TuneLen = 12

// TuneMessage builds a 12-byte tune request: a reversed big-endian PLL
// register value, a byte giving the register word's bit length, the PLL reference byte, an
// L-band flag byte, and a fixed trailer.
func TuneMessage(register uint32, bits, pll byte, lBand bool) [TuneLen]byte {
	var m [TuneLen]byte

	var regBytes [4]byte
	binary.BigEndian.PutUint32(regBytes[:], register)
	// The tuner expects the register word byte-reversed.
	m[0], m[1], m[2], m[3] = regBytes[3], regBytes[2], regBytes[1], regBytes[0]

	m[4] = bits
	m[5] = 0x00
	m[6] = pll
	m[7] = 0x00
	if lBand {
		m[8] = 0x01
	} else {
		m[8] = 0x00
	}
	m[9] = 0x00
	m[10] = 0x00
	m[11] = 0x10
	return m
}

// TimingLen is the length in bytes of a timing control envelope.
const TimingLen = 32

// timingSelstrOffset and timingWordsOffset locate the selstr bitmap and
// the two scaled timing words within the 32-byte timing envelope.
const (
	timingSelstrOffset = 2
	timingWordsOffset  = 24
)

// TimingMessage builds the 32-byte timing envelope sent once per locked
// PRS: the symbol-selection bitmap (which OFDM symbols the front end
// should forward) at bytes 2..12, and two little-endian scaled copies of
// the PRS synchroniser's running timing offset at bytes 24..28.
func TimingMessage(selstr [10]byte, avgTimingOffset float64) [TimingLen]byte {
	var m [TimingLen]byte
	copy(m[timingSelstrOffset:timingSelstrOffset+10], selstr[:])
	binary.LittleEndian.PutUint16(m[timingWordsOffset:timingWordsOffset+2], uint16(int16(math.Round(avgTimingOffset*81.664))))
	binary.LittleEndian.PutUint16(m[timingWordsOffset+2:timingWordsOffset+4], uint16(int16(math.Round(avgTimingOffset*1.024))))
	return m
}

// WaveFinder PLL tuning constants (frequencies in MHz/Hz as noted).
const (
	maxFreqIII  = 240.0    // highest Band III frequency; above this the L-band offset applies
	lBandOffset = 1251.456 // subtracted from the input frequency for L-band tuning
	intermedFreq = 38.912e6 // receiver intermediate frequency
	refOsc      = 16.384e6 // PLL reference oscillator frequency

	r1511 = 1024.0 // LMX1511 R division constant
	p1511 = 64     // LMX1511 prescaler

	r2331A    = 256 // LMX2331A IF and RF R counter
	nifA2331A = 0   // LMX2331A IF N counter (A)
	nifB2331A = 40  // LMX2331A IF N counter (B)
	nrfA2331A = 98  // LMX2331A RF N counter (A)
	nrfB2331A = 152 // LMX2331A RF N counter (B)

	lmx2331A byte = 0
	lmx1511  byte = 1
)

// reverseBits reverses the low length bits of op.
func reverseBits(op uint32, length int) uint32 {
	var j uint32
	for i := 0; i < length; i++ {
		if op&(1<<uint(length-i-1)) != 0 {
			j |= 1 << uint(i)
		}
	}
	return j
}

// BuildTuneSequence builds the fixed six-message tune sequence that
// programs the LMX2331A (RF/IF R and N counters) and LMX1511 (Band III R
// and N counters) PLLs for the given RF frequency in MHz. The messages
// must be sent to the tuner in order.
func BuildTuneSequence(freqMHz float64) [6][TuneLen]byte {
	lBand := freqMHz > maxFreqIII
	offsetFreq := freqMHz
	if lBand {
		offsetFreq -= lBandOffset
	}

	var seq [6][TuneLen]byte

	rc := uint32(0x100000) | reverseBits(r2331A, 15)<<5 | 0x10
	seq[0] = TuneMessage(rc, 22, lmx2331A, lBand)

	rc = 0x300000 | reverseBits(nrfA2331A, 7)<<13 | reverseBits(nrfB2331A, 11)<<2 | 2
	seq[1] = TuneMessage(rc, 22, lmx2331A, lBand)

	rc = reverseBits(r2331A, 15)<<5 | 0x10
	seq[2] = TuneMessage(rc, 22, lmx2331A, lBand)

	fVCO := uint32(math.Ceil((offsetFreq*1e6 + intermedFreq) / (refOsc / r1511)))

	rc = 0x200000 | reverseBits(nifA2331A, 7)<<13 | reverseBits(nifB2331A, 11)<<2 | 2
	seq[3] = TuneMessage(rc, 22, lmx2331A, lBand)

	b1511 := fVCO / p1511
	a1511 := fVCO % p1511

	rc = 0x8000 | reverseBits(uint32(r1511), 14)<<1 | 1
	seq[4] = TuneMessage(rc, 16, lmx1511, lBand)

	rc = reverseBits(a1511, 7)<<11 | reverseBits(b1511, 11)
	seq[5] = TuneMessage(rc, 19, lmx1511, lBand)

	return seq
}

// RegisterWriteLen is the length in bytes of a raw register write.
const RegisterWriteLen = 4

// RegisterWriteMessage builds a 4-byte SLMEM-style register write:
// address split high/low, value split high/low.
func RegisterWriteMessage(addr, value uint16) [RegisterWriteLen]byte {
	var m [RegisterWriteLen]byte
	m[0] = byte(addr >> 8)
	m[1] = byte(addr)
	m[2] = byte(value >> 8)
	m[3] = byte(value)
	return m
}
